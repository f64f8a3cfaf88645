package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"crowdbond/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an investor with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithRole(t, db, email, models.RoleInvestor)
}

// CreateTestAdmin creates a user holding the administrator role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("admin%d@test.com", nextID())
	return CreateTestUserWithRole(t, db, email, models.RoleAdmin)
}

// CreateTestUserWithRole creates a user with the given email and role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestWallet creates a wallet with zero balance.
func CreateTestWallet(t *testing.T, db *gorm.DB, userID uint) *models.Wallet {
	t.Helper()
	return CreateTestWalletWithBalance(t, db, userID, 0)
}

// CreateTestWalletWithBalance creates a wallet with the given balance (in cents).
func CreateTestWalletWithBalance(t *testing.T, db *gorm.DB, userID uint, balance int64) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:   userID,
		Balance:  balance,
		Currency: "USD",
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestRound creates an open round with its treasury. The round stays
// open for 30 days and matures a year after that.
func CreateTestRound(t *testing.T, db *gorm.DB, createdBy uint, unitPrice, rewardRateBps, supplyCap int64) *models.Round {
	t.Helper()

	now := time.Now()
	round := &models.Round{
		Name:          fmt.Sprintf("Test Round %d", nextID()),
		Currency:      "USD",
		UnitPrice:     unitPrice,
		RewardRateBps: rewardRateBps,
		SupplyCap:     supplyCap,
		OpenUntil:     now.Add(30 * 24 * time.Hour),
		Maturity:      now.Add(395 * 24 * time.Hour),
		Status:        models.RoundStatusOpen,
		IsActive:      true,
		CreatedBy:     createdBy,
	}
	if err := db.Create(round).Error; err != nil {
		t.Fatalf("failed to create test round: %v", err)
	}

	treasury := &models.RoundTreasury{RoundID: round.ID}
	if err := db.Create(treasury).Error; err != nil {
		t.Fatalf("failed to create test round treasury: %v", err)
	}
	round.Treasury = treasury
	return round
}

// CreateTestCertificate creates a single-unit certificate in the given round.
func CreateTestCertificate(t *testing.T, db *gorm.DB, ownerID uint, round *models.Round) *models.Certificate {
	t.Helper()

	cert := &models.Certificate{
		RoundID:               round.ID,
		UnitPriceSnapshot:     round.UnitPrice,
		RewardRateBpsSnapshot: round.RewardRateBps,
		Quantity:              1,
		PurchasedAt:           time.Now(),
		OriginalBuyerID:       ownerID,
		OwnerID:               ownerID,
	}
	if err := db.Create(cert).Error; err != nil {
		t.Fatalf("failed to create test certificate: %v", err)
	}
	return cert
}
