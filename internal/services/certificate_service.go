package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/models"
	"crowdbond/internal/pagination"
)

// certificateService handles certificate identity, ownership, and claim flags.
type certificateService struct {
	db *gorm.DB
}

// NewCertificateService creates a new CertificateServicer.
func NewCertificateService(db *gorm.DB) CertificateServicer {
	return &certificateService{db: db}
}

// Mint creates `quantity` certificates of one unit each for the owner,
// snapshotting the round's terms at mint time. The batch is inserted in a
// single statement inside the caller's transaction.
func (s *certificateService) Mint(tx *gorm.DB, ownerID, roundID uint, priceSnapshot, rateBpsSnapshot, quantity int64, purchasedAt time.Time) ([]models.Certificate, error) {
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "mint quantity must be positive")
	}

	certs := make([]models.Certificate, quantity)
	for i := range certs {
		certs[i] = models.Certificate{
			RoundID:               roundID,
			UnitPriceSnapshot:     priceSnapshot,
			RewardRateBpsSnapshot: rateBpsSnapshot,
			Quantity:              1,
			PurchasedAt:           purchasedAt,
			OriginalBuyerID:       ownerID,
			OwnerID:               ownerID,
		}
	}

	if err := tx.Create(&certs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return certs, nil
}

// OwnerOf returns the current owner of a certificate.
func (s *certificateService) OwnerOf(certificateID uint) (uint, error) {
	var cert models.Certificate
	if err := s.db.Select("owner_id").First(&cert, certificateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrCertificateNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cert.OwnerID, nil
}

// GetCertificate returns a certificate owned by the given user.
func (s *certificateService) GetCertificate(userID, certificateID uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.Preload("Round").First(&cert, certificateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if cert.OwnerID != userID {
		return nil, apperrors.ErrCertificateNotFound
	}
	return &cert, nil
}

// OwnedBy returns a paginated list of certificates currently owned by the user.
func (s *certificateService) OwnedBy(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Certificate], error) {
	page.Defaults()

	base := s.db.Model(&models.Certificate{}).Where("owner_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var certs []models.Certificate
	if err := base.Scopes(pagination.Paginate(page)).Find(&certs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(certs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// OwnedInRound returns all of a user's certificates in a round, read inside
// the caller's transaction so ownership is current at claim time.
func (s *certificateService) OwnedInRound(tx *gorm.DB, ownerID, roundID uint) ([]models.Certificate, error) {
	var certs []models.Certificate
	if err := tx.Where("owner_id = ? AND round_id = ?", ownerID, roundID).
		Order("id").Find(&certs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return certs, nil
}

// SetRedeemed marks a certificate as redeemed. The flag is one-way.
func (s *certificateService) SetRedeemed(tx *gorm.DB, certificateID uint) error {
	return setFlag(tx, certificateID, "redeemed", true)
}

// SetRewardClaimed marks a certificate's phase-one reward as claimed. The
// flag is one-way.
func (s *certificateService) SetRewardClaimed(tx *gorm.DB, certificateID uint) error {
	return setFlag(tx, certificateID, "reward_claimed", true)
}

// SetTransferLock toggles the transfer lock on a certificate.
func (s *certificateService) SetTransferLock(tx *gorm.DB, certificateID uint, locked bool) error {
	return setFlag(tx, certificateID, "transfer_locked", locked)
}

func setFlag(tx *gorm.DB, certificateID uint, column string, value bool) error {
	res := tx.Model(&models.Certificate{}).Where("id = ?", certificateID).Update(column, value)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCertificateNotFound
	}
	return nil
}

// Transfer moves a certificate to a new owner. Certificates locked pending
// claim settlement cannot move until the claim engine clears the lock.
func (s *certificateService) Transfer(userID, certificateID, newOwnerID uint) (*models.Certificate, error) {
	if newOwnerID == userID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot transfer a certificate to yourself")
	}

	cert, err := s.GetCertificate(userID, certificateID)
	if err != nil {
		return nil, err
	}

	if cert.TransferLocked {
		return nil, apperrors.ErrTransferLocked
	}

	var recipient models.User
	if err := s.db.Where("id = ? AND is_active = ?", newOwnerID, true).First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(cert).Update("owner_id", newOwnerID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cert, nil
}
