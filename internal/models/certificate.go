package models

import "time"

// Certificate represents a uniquely owned unit purchased in a round. The
// round's terms are snapshotted at mint time and never change afterwards,
// regardless of later round mutation. The claim flags are one-way: once
// redeemed, a certificate is inert.
type Certificate struct {
	Base
	RoundID               uint      `gorm:"not null;index" json:"round_id"`
	UnitPriceSnapshot     int64     `gorm:"type:bigint;not null" json:"unit_price_snapshot"`
	RewardRateBpsSnapshot int64     `gorm:"not null" json:"reward_rate_bps_snapshot"`
	Quantity              int64     `gorm:"not null;default:1" json:"quantity"`
	PurchasedAt           time.Time `gorm:"not null" json:"purchased_at"`
	OriginalBuyerID       uint      `gorm:"not null;index" json:"original_buyer_id"`
	OwnerID               uint      `gorm:"not null;index" json:"owner_id"`
	Redeemed              bool      `gorm:"not null;default:false" json:"redeemed"`
	RewardClaimed         bool      `gorm:"not null;default:false" json:"reward_claimed"`
	TransferLocked        bool      `gorm:"not null;default:false" json:"transfer_locked"`

	// Relationships
	Round Round `gorm:"foreignKey:RoundID" json:"round,omitempty"`
}
