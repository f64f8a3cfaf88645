package models

// RoundTreasury is the per-round custodial fund ledger. LedgerBalance is the
// total amount currently held for the round; RewardPool is the slice of that
// balance earmarked for claim payouts. RewardPool never exceeds LedgerBalance
// and neither ever goes negative. TotalRaised is informational and only grows.
type RoundTreasury struct {
	Base
	RoundID       uint  `gorm:"uniqueIndex;not null" json:"round_id"`
	LedgerBalance int64 `gorm:"type:bigint;not null;default:0" json:"ledger_balance"`
	RewardPool    int64 `gorm:"type:bigint;not null;default:0" json:"reward_pool"`
	TotalRaised   int64 `gorm:"type:bigint;not null;default:0" json:"total_raised"`
}

// TreasuryEntryDirection distinguishes inflows from outflows.
type TreasuryEntryDirection string

const (
	TreasuryCredit TreasuryEntryDirection = "credit"
	TreasuryDebit  TreasuryEntryDirection = "debit"
)

// TreasuryEntrySource identifies the operation that moved the funds.
type TreasuryEntrySource string

const (
	TreasurySourceInvestment TreasuryEntrySource = "investment"
	TreasurySourceReward     TreasuryEntrySource = "reward_topup"
	TreasurySourceClaim      TreasuryEntrySource = "claim_payout"
	TreasurySourceWithdrawal TreasuryEntrySource = "withdrawal"
	TreasurySourceEmergency  TreasuryEntrySource = "emergency_withdrawal"
)

// TreasuryEntry is an immutable audit row written by every treasury credit
// or debit. All higher-level fund flows compose the two primitives, so the
// entry log is a complete history of the round's money movement.
type TreasuryEntry struct {
	Base
	RoundID   uint                   `gorm:"not null;index" json:"round_id"`
	Direction TreasuryEntryDirection `gorm:"not null" json:"direction"`
	Source    TreasuryEntrySource    `gorm:"not null" json:"source"`
	Amount    int64                  `gorm:"type:bigint;not null" json:"amount"`
	Reference string                 `gorm:"uniqueIndex;not null" json:"reference"`
	ActorID   uint                   `gorm:"not null;index" json:"actor_id"`
}
