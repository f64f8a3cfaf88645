package models

import "time"

// RoundStatus represents the lifecycle status of a fundraising round.
type RoundStatus string

const (
	RoundStatusOpen         RoundStatus = "open"
	RoundStatusClosed       RoundStatus = "closed"
	RoundStatusCompleted    RoundStatus = "completed"
	RoundStatusWithdrawn    RoundStatus = "withdrawn"
	RoundStatusDividendPaid RoundStatus = "dividend_paid"
)

// Round represents a time-boxed fundraising tranche with a fixed unit price
// and reward rate. Rounds are append-only after creation except for the
// status and active toggles and the units-sold counter.
type Round struct {
	Base
	Name          string      `gorm:"not null" json:"name"`
	Currency      string      `gorm:"not null;default:'USD'" json:"currency"`
	UnitPrice     int64       `gorm:"type:bigint;not null" json:"unit_price"`
	RewardRateBps int64       `gorm:"not null" json:"reward_rate_bps"`
	SupplyCap     int64       `gorm:"not null" json:"supply_cap"`
	UnitsSold     int64       `gorm:"not null;default:0" json:"units_sold"`
	OpenUntil     time.Time   `gorm:"not null" json:"open_until"`
	Maturity      time.Time   `gorm:"not null" json:"maturity"`
	Status        RoundStatus `gorm:"not null;default:'open'" json:"status"`
	IsActive      bool        `gorm:"default:true" json:"is_active"`
	CreatedBy     uint        `gorm:"not null;index" json:"created_by"`

	// Relationships
	Treasury     *RoundTreasury `gorm:"foreignKey:RoundID" json:"treasury,omitempty"`
	Certificates []Certificate  `gorm:"foreignKey:RoundID" json:"certificates,omitempty"`
}

// UnitsRemaining returns the number of units still available for purchase.
func (r *Round) UnitsRemaining() int64 {
	return r.SupplyCap - r.UnitsSold
}
