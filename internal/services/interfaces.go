package services

import (
	"time"

	"gorm.io/gorm"

	"crowdbond/internal/models"
	"crowdbond/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// WalletServicer defines the contract for the fungible balance collaborator.
// Credit and Debit run inside a caller-supplied transaction so fund movement
// commits or rolls back together with the ledger mutation that caused it.
type WalletServicer interface {
	BalanceOf(userID uint) (*models.Wallet, error)
	Deposit(userID uint, amount int64) (*models.Wallet, error)
	Credit(tx *gorm.DB, userID uint, amount int64) error
	Debit(tx *gorm.DB, userID uint, amount int64) error
}

// TreasuryServicer defines the contract for per-round fund bookkeeping.
// Credit and Debit are the only two balance-mutation primitives; every
// higher-level flow composes them and never bypasses the balance check.
type TreasuryServicer interface {
	GetTreasury(roundID uint) (*models.RoundTreasury, error)
	Credit(tx *gorm.DB, roundID uint, amount int64, intoPool bool, source models.TreasuryEntrySource, actorID uint) error
	Debit(tx *gorm.DB, roundID uint, amount int64, fromPool bool, source models.TreasuryEntrySource, actorID uint) error
	AddReward(adminID, roundID uint, amount int64) (*models.RoundTreasury, error)
	EmergencyWithdraw(adminID, roundID uint, amount int64) (*models.RoundTreasury, error)
	ListEntries(roundID uint, page pagination.PageRequest) (*pagination.PageResponse[models.TreasuryEntry], error)
}

// CertificateServicer defines the contract for the certificate registry.
// The mutation methods are only invoked by the round and claim services;
// handlers consume the read views and Transfer.
type CertificateServicer interface {
	Mint(tx *gorm.DB, ownerID, roundID uint, priceSnapshot, rateBpsSnapshot, quantity int64, purchasedAt time.Time) ([]models.Certificate, error)
	OwnerOf(certificateID uint) (uint, error)
	GetCertificate(userID, certificateID uint) (*models.Certificate, error)
	OwnedBy(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Certificate], error)
	OwnedInRound(tx *gorm.DB, ownerID, roundID uint) ([]models.Certificate, error)
	SetRedeemed(tx *gorm.DB, certificateID uint) error
	SetRewardClaimed(tx *gorm.DB, certificateID uint) error
	SetTransferLock(tx *gorm.DB, certificateID uint, locked bool) error
	Transfer(userID, certificateID, newOwnerID uint) (*models.Certificate, error)
}

// RoundFilter holds optional filter parameters for listing rounds.
type RoundFilter struct {
	Status     *models.RoundStatus
	ActiveOnly bool
}

// InvestmentReceipt summarizes a completed investment.
type InvestmentReceipt struct {
	Round        *models.Round        `json:"round"`
	Certificates []models.Certificate `json:"certificates"`
	Cost         int64                `json:"cost"`
}

// RoundServicer defines the contract for round lifecycle and investment logic.
type RoundServicer interface {
	CreateRound(adminID uint, name, currency string, unitPrice, rewardRateBps, supplyCap int64, openUntil, maturity time.Time) (*models.Round, error)
	GetRound(roundID uint) (*models.Round, error)
	ListRounds(page pagination.PageRequest, filter RoundFilter) (*pagination.PageResponse[models.Round], error)
	Invest(userID, roundID uint, quantity int64) (*InvestmentReceipt, error)
	SetActive(adminID, roundID uint, active bool) (*models.Round, error)
	UpdateStatus(adminID, roundID uint, status models.RoundStatus) (*models.Round, error)
	Withdraw(adminID, roundID uint) (int64, error)
	SetNowFunc(now func() time.Time)
}

// ClaimPhase identifies which payout phase a certificate payout belongs to.
type ClaimPhase string

const (
	PhaseNone          ClaimPhase = "none"
	PhasePartialReward ClaimPhase = "partial_reward"
	PhaseRedemption    ClaimPhase = "redemption"
)

// CertificatePayout is the payable entitlement of a single certificate.
type CertificatePayout struct {
	CertificateID uint       `json:"certificate_id"`
	Amount        int64      `json:"amount"`
	Phase         ClaimPhase `json:"phase"`
}

// ClaimResult summarizes a claim evaluation or settlement.
type ClaimResult struct {
	RoundID     uint                `json:"round_id"`
	TotalPayout int64               `json:"total_payout"`
	Payouts     []CertificatePayout `json:"payouts"`
}

// ClaimServicer defines the contract for the phased payout engine.
type ClaimServicer interface {
	ClaimRound(userID, roundID uint, certificateIDs []uint) (*ClaimResult, error)
	Claimable(userID, roundID uint) (*ClaimResult, error)
	SetNowFunc(now func() time.Time)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
