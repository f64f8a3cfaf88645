package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/models"
	"crowdbond/internal/money"
)

// walletService handles fungible balance bookkeeping.
type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB) WalletServicer {
	return &walletService{db: db}
}

// ensureWallet loads the user's wallet, creating a zero-balance one on first use.
func ensureWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	wallet = models.Wallet{UserID: userID}
	if err := tx.Create(&wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// lockWallet loads the wallet with a row lock so that concurrent balance
// mutations on the same wallet serialize. SQLite has no SELECT FOR UPDATE;
// its single-writer model already serializes the write.
func lockWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return ensureWallet(tx, userID)
}

// BalanceOf returns the user's wallet, creating it if absent.
func (s *walletService) BalanceOf(userID uint) (*models.Wallet, error) {
	return ensureWallet(s.db, userID)
}

// Deposit adds funds to the user's wallet.
func (s *walletService) Deposit(userID uint, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "deposit amount must be positive")
	}

	var wallet *models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.Credit(tx, userID, amount); txErr != nil {
			return txErr
		}
		var txErr error
		wallet, txErr = ensureWallet(tx, userID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// Credit adds funds to the user's wallet inside the caller's transaction.
func (s *walletService) Credit(tx *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "credit amount must be positive")
	}

	wallet, err := lockWallet(tx, userID)
	if err != nil {
		return err
	}

	newBalance, err := money.Add(wallet.Balance, amount)
	if err != nil {
		return err
	}

	if err := tx.Model(wallet).Update("balance", newBalance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Debit removes funds from the user's wallet inside the caller's transaction.
// It fails with InsufficientBalance before driving the balance negative.
func (s *walletService) Debit(tx *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "debit amount must be positive")
	}

	wallet, err := lockWallet(tx, userID)
	if err != nil {
		return err
	}

	if wallet.Balance < amount {
		return apperrors.ErrInsufficientBalance
	}

	if err := tx.Model(wallet).Update("balance", wallet.Balance-amount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
