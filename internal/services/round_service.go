package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/models"
	"crowdbond/internal/money"
	"crowdbond/internal/pagination"
)

// roundService owns round definitions and the investment transaction that
// issues certificates against a round's remaining supply.
type roundService struct {
	db           *gorm.DB
	treasury     TreasuryServicer
	certificates CertificateServicer
	wallets      WalletServicer
	locks        *RoundLocks
	now          func() time.Time
}

// NewRoundService creates a new RoundServicer.
func NewRoundService(db *gorm.DB, treasury TreasuryServicer, certificates CertificateServicer, wallets WalletServicer, locks *RoundLocks) RoundServicer {
	return &roundService{
		db:           db,
		treasury:     treasury,
		certificates: certificates,
		wallets:      wallets,
		locks:        locks,
		now:          time.Now,
	}
}

// SetNowFunc overrides the time source. Intended for tests to provide
// deterministic timestamps.
func (s *roundService) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

func loadRound(tx *gorm.DB, roundID uint) (*models.Round, error) {
	var round models.Round
	if err := tx.First(&round, roundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &round, nil
}

// CreateRound creates a round with its treasury. Price, rate, cap, and the
// investment/maturity window are validated up front; the window is immutable
// after creation.
func (s *roundService) CreateRound(adminID uint, name, currency string, unitPrice, rewardRateBps, supplyCap int64, openUntil, maturity time.Time) (*models.Round, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "round name is required")
	}
	if unitPrice <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "unit price must be positive")
	}
	if rewardRateBps <= 0 || rewardRateBps > money.BasisPointDivisor {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "reward rate must be between 1 and 10000 basis points")
	}
	if supplyCap <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "supply cap must be positive")
	}
	now := s.now()
	if !openUntil.After(now) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "investment close must be in the future")
	}
	if !maturity.After(openUntil) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "maturity must be after the investment close")
	}
	if currency == "" {
		currency = "USD"
	}

	round := &models.Round{
		Name:          name,
		Currency:      currency,
		UnitPrice:     unitPrice,
		RewardRateBps: rewardRateBps,
		SupplyCap:     supplyCap,
		OpenUntil:     openUntil,
		Maturity:      maturity,
		Status:        models.RoundStatusOpen,
		IsActive:      true,
		CreatedBy:     adminID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Create(round).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		treasury := &models.RoundTreasury{RoundID: round.ID}
		if txErr := tx.Create(treasury).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		round.Treasury = treasury
		return nil
	})
	if err != nil {
		return nil, err
	}

	return round, nil
}

// GetRound returns a round with its treasury.
func (s *roundService) GetRound(roundID uint) (*models.Round, error) {
	var round models.Round
	if err := s.db.Preload("Treasury").First(&round, roundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &round, nil
}

// ListRounds returns a paginated list of rounds, newest first.
func (s *roundService) ListRounds(page pagination.PageRequest, filter RoundFilter) (*pagination.PageResponse[models.Round], error) {
	page.Defaults()

	base := s.db.Model(&models.Round{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.ActiveOnly {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rounds []models.Round
	if err := base.Preload("Treasury").Order("id DESC").
		Scopes(pagination.Paginate(page)).Find(&rounds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rounds, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Invest buys `quantity` units of a round: it debits the investor's wallet,
// credits the round treasury, mints one certificate per unit with the
// round's current terms snapshotted, and advances the units-sold counter.
// Either everything commits or nothing does.
func (s *roundService) Invest(userID, roundID uint, quantity int64) (*InvestmentReceipt, error) {
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "quantity must be positive")
	}

	unlock := s.locks.Lock(roundID)
	defer unlock()

	round, err := loadRound(s.db, roundID)
	if err != nil {
		return nil, err
	}
	if !round.IsActive {
		return nil, apperrors.ErrRoundInactive
	}
	if round.Status != models.RoundStatusOpen {
		return nil, apperrors.WithMessage(apperrors.ErrWindowClosed, "round is no longer open for investment")
	}
	if s.now().After(round.OpenUntil) {
		return nil, apperrors.WithMessage(apperrors.ErrWindowClosed, "investment window has closed")
	}
	if quantity > round.UnitsRemaining() {
		return nil, apperrors.ErrSupplyExhausted
	}

	cost, err := money.Mul(quantity, round.UnitPrice)
	if err != nil {
		return nil, err
	}

	var certs []models.Certificate
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.wallets.Debit(tx, userID, cost); txErr != nil {
			return txErr
		}
		if txErr := s.treasury.Credit(tx, roundID, cost, false, models.TreasurySourceInvestment, userID); txErr != nil {
			return txErr
		}

		var txErr error
		certs, txErr = s.certificates.Mint(tx, userID, roundID, round.UnitPrice, round.RewardRateBps, quantity, s.now())
		if txErr != nil {
			return txErr
		}

		if txErr := tx.Model(round).Update("units_sold", round.UnitsSold+quantity).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &InvestmentReceipt{Round: round, Certificates: certs, Cost: cost}, nil
}

// SetActive toggles whether the round accepts investments and claims.
func (s *roundService) SetActive(adminID, roundID uint, active bool) (*models.Round, error) {
	round, err := loadRound(s.db, roundID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(round).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return round, nil
}

// UpdateStatus moves the round to a new lifecycle status. Pure state
// transition, no effect on funds.
func (s *roundService) UpdateStatus(adminID, roundID uint, status models.RoundStatus) (*models.Round, error) {
	switch status {
	case models.RoundStatusOpen, models.RoundStatusClosed, models.RoundStatusCompleted,
		models.RoundStatusWithdrawn, models.RoundStatusDividendPaid:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "unknown round status")
	}

	round, err := loadRound(s.db, roundID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(round).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return round, nil
}

// Withdraw moves the round's entire ledger balance to the administrator's
// wallet and marks the round withdrawn. The per-round lock keeps it from
// racing an in-flight claim against the same balance.
func (s *roundService) Withdraw(adminID, roundID uint) (int64, error) {
	unlock := s.locks.Lock(roundID)
	defer unlock()

	round, err := loadRound(s.db, roundID)
	if err != nil {
		return 0, err
	}

	treasury, err := s.treasury.GetTreasury(roundID)
	if err != nil {
		return 0, err
	}
	amount := treasury.LedgerBalance

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if amount > 0 {
			if txErr := s.treasury.Debit(tx, roundID, amount, false, models.TreasurySourceWithdrawal, adminID); txErr != nil {
				return txErr
			}
			if txErr := s.wallets.Credit(tx, adminID, amount); txErr != nil {
				return txErr
			}
		}
		if txErr := tx.Model(round).Update("status", models.RoundStatusWithdrawn).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return amount, nil
}
