package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/models"
	"crowdbond/internal/money"
	"crowdbond/internal/pagination"
	"crowdbond/internal/refid"
)

// treasuryService handles per-round custodial fund bookkeeping.
type treasuryService struct {
	db      *gorm.DB
	wallets WalletServicer
	locks   *RoundLocks
}

// NewTreasuryService creates a new TreasuryServicer.
func NewTreasuryService(db *gorm.DB, wallets WalletServicer, locks *RoundLocks) TreasuryServicer {
	return &treasuryService{db: db, wallets: wallets, locks: locks}
}

func loadTreasury(tx *gorm.DB, roundID uint) (*models.RoundTreasury, error) {
	var treasury models.RoundTreasury
	if err := tx.Where("round_id = ?", roundID).First(&treasury).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTreasuryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &treasury, nil
}

// GetTreasury returns the fund ledger for a round.
func (s *treasuryService) GetTreasury(roundID uint) (*models.RoundTreasury, error) {
	return loadTreasury(s.db, roundID)
}

// Credit adds funds to the round's ledger balance, and to the reward pool
// when intoPool is set. Investment credits also grow the monotonic
// total-raised counter. An immutable treasury entry records the movement.
func (s *treasuryService) Credit(tx *gorm.DB, roundID uint, amount int64, intoPool bool, source models.TreasuryEntrySource, actorID uint) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidParameters, "credit amount must be positive")
	}

	treasury, err := loadTreasury(tx, roundID)
	if err != nil {
		return err
	}

	newBalance, err := money.Add(treasury.LedgerBalance, amount)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"ledger_balance": newBalance}
	if intoPool {
		newPool, poolErr := money.Add(treasury.RewardPool, amount)
		if poolErr != nil {
			return poolErr
		}
		updates["reward_pool"] = newPool
	}
	if source == models.TreasurySourceInvestment {
		newRaised, raisedErr := money.Add(treasury.TotalRaised, amount)
		if raisedErr != nil {
			return raisedErr
		}
		updates["total_raised"] = newRaised
	}

	if err := tx.Model(treasury).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return writeEntry(tx, roundID, models.TreasuryCredit, source, amount, actorID)
}

// Debit removes funds from the round's ledger balance, failing with
// InsufficientBalance before the balance would go negative. When fromPool is
// set the reward pool is debited too (InsufficientPool on shortfall). The
// pool is a sub-bucket of the ledger, so it is clamped to the remaining
// balance on every debit.
func (s *treasuryService) Debit(tx *gorm.DB, roundID uint, amount int64, fromPool bool, source models.TreasuryEntrySource, actorID uint) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidParameters, "debit amount must be positive")
	}

	treasury, err := loadTreasury(tx, roundID)
	if err != nil {
		return err
	}

	newBalance := treasury.LedgerBalance - amount
	if newBalance < 0 {
		return apperrors.ErrInsufficientBalance
	}

	newPool := treasury.RewardPool
	if fromPool {
		newPool -= amount
		if newPool < 0 {
			return apperrors.ErrInsufficientPool
		}
	}
	if newPool > newBalance {
		newPool = newBalance
	}

	updates := map[string]interface{}{
		"ledger_balance": newBalance,
		"reward_pool":    newPool,
	}
	if err := tx.Model(treasury).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return writeEntry(tx, roundID, models.TreasuryDebit, source, amount, actorID)
}

func writeEntry(tx *gorm.DB, roundID uint, direction models.TreasuryEntryDirection, source models.TreasuryEntrySource, amount int64, actorID uint) error {
	entry := &models.TreasuryEntry{
		RoundID:   roundID,
		Direction: direction,
		Source:    source,
		Amount:    amount,
		Reference: refid.New(),
		ActorID:   actorID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddReward moves funds from the administrator's wallet into the round's
// reward pool.
func (s *treasuryService) AddReward(adminID, roundID uint, amount int64) (*models.RoundTreasury, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "reward amount must be positive")
	}

	unlock := s.locks.Lock(roundID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.wallets.Debit(tx, adminID, amount); txErr != nil {
			return txErr
		}
		return s.Credit(tx, roundID, amount, true, models.TreasurySourceReward, adminID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTreasury(roundID)
}

// EmergencyWithdraw is the administrator circuit breaker: it pulls an
// arbitrary amount out of the round's ledger through the normal debit
// primitive, so the balance check and entry log still apply.
func (s *treasuryService) EmergencyWithdraw(adminID, roundID uint, amount int64) (*models.RoundTreasury, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "withdrawal amount must be positive")
	}

	unlock := s.locks.Lock(roundID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.Debit(tx, roundID, amount, false, models.TreasurySourceEmergency, adminID); txErr != nil {
			return txErr
		}
		return s.wallets.Credit(tx, adminID, amount)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTreasury(roundID)
}

// ListEntries returns a paginated list of the round's treasury entries,
// newest first.
func (s *treasuryService) ListEntries(roundID uint, page pagination.PageRequest) (*pagination.PageResponse[models.TreasuryEntry], error) {
	if _, err := loadTreasury(s.db, roundID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.TreasuryEntry{}).Where("round_id = ?", roundID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.TreasuryEntry
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}
