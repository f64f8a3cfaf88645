package models

// Wallet holds a user's fungible balance in the smallest currency unit.
// Investments debit it, claims and withdrawals credit it. Balances never
// go negative; the wallet service enforces this on every debit.
type Wallet struct {
	Base
	UserID   uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance  int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
	Currency string `gorm:"not null;default:'USD'" json:"currency"`
}
