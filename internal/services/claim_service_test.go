package services

import (
	"testing"
	"time"

	"crowdbond/internal/models"
	"crowdbond/internal/testutil"

	"gorm.io/gorm"
)

// setupClaimRound builds a round with two single-unit certificates bought by
// the investor: unit price 500, reward rate 600 bps, so each certificate
// carries a 30 reward and the pair a 1000 principal.
func setupClaimRound(t *testing.T, db *gorm.DB, stack *testStack) (*models.User, *models.User, *models.Round) {
	t.Helper()

	admin := testutil.CreateTestAdmin(t, db)
	investor := testutil.CreateTestUser(t, db)
	testutil.CreateTestWalletWithBalance(t, db, admin.ID, 100000)
	testutil.CreateTestWalletWithBalance(t, db, investor.ID, 1000)
	round := testutil.CreateTestRound(t, db, admin.ID, 500, 600, 100)

	_, err := stack.rounds.Invest(investor.ID, round.ID, 2)
	testutil.AssertNoError(t, err)
	return admin, investor, round
}

func atPhase1(round *models.Round) func() time.Time {
	when := round.OpenUntil.Add(phase1Wait + time.Hour)
	return func() time.Time { return when }
}

func atRedemption(round *models.Round) func() time.Time {
	when := round.OpenUntil.Add(redemptionWait + time.Hour)
	return func() time.Time { return when }
}

func TestClaimRound(t *testing.T) {
	t.Run("partial_reward_phase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 30)
		testutil.AssertNoError(t, err)

		stack.claims.SetNowFunc(atPhase1(round))
		result, err := stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		// Half of each certificate's 30 reward: 15 per certificate.
		if result.TotalPayout != 30 {
			t.Errorf("expected total payout 30, got %d", result.TotalPayout)
		}
		if len(result.Payouts) != 2 {
			t.Fatalf("expected 2 payouts, got %d", len(result.Payouts))
		}
		for _, payout := range result.Payouts {
			if payout.Amount != 15 {
				t.Errorf("expected payout 15, got %d", payout.Amount)
			}
			if payout.Phase != PhasePartialReward {
				t.Errorf("expected partial_reward phase, got %s", payout.Phase)
			}
		}

		treasury, err := stack.treasury.GetTreasury(round.ID)
		testutil.AssertNoError(t, err)
		if treasury.LedgerBalance != 1000 {
			t.Errorf("expected ledger 1000 after reward claim, got %d", treasury.LedgerBalance)
		}
		if treasury.RewardPool != 0 {
			t.Errorf("expected empty reward pool, got %d", treasury.RewardPool)
		}

		wallet, err := stack.wallets.BalanceOf(investor.ID)
		testutil.AssertNoError(t, err)
		if wallet.Balance != 30 {
			t.Errorf("expected investor wallet 30, got %d", wallet.Balance)
		}

		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Find(&certs)
		for _, cert := range certs {
			if !cert.RewardClaimed {
				t.Error("expected reward_claimed flag set")
			}
			if cert.Redeemed {
				t.Error("expected certificate not yet redeemed")
			}
			if !cert.TransferLocked {
				t.Error("expected transfer lock after partial reward claim")
			}
		}
	})

	t.Run("redemption_after_partial", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 30)
		testutil.AssertNoError(t, err)
		stack.claims.SetNowFunc(atPhase1(round))
		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		// Principal 500 plus the remaining 15 reward per certificate.
		_, err = stack.treasury.AddReward(admin.ID, round.ID, 1030)
		testutil.AssertNoError(t, err)
		stack.claims.SetNowFunc(atRedemption(round))
		result, err := stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		if result.TotalPayout != 1030 {
			t.Errorf("expected total payout 1030, got %d", result.TotalPayout)
		}
		for _, payout := range result.Payouts {
			if payout.Amount != 515 {
				t.Errorf("expected payout 515, got %d", payout.Amount)
			}
			if payout.Phase != PhaseRedemption {
				t.Errorf("expected redemption phase, got %s", payout.Phase)
			}
		}

		// Round trip: 1000 spent, 30 + 1030 received, principal plus full reward.
		wallet, err := stack.wallets.BalanceOf(investor.ID)
		testutil.AssertNoError(t, err)
		if wallet.Balance != 1060 {
			t.Errorf("expected investor wallet 1060, got %d", wallet.Balance)
		}

		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Find(&certs)
		for _, cert := range certs {
			if !cert.Redeemed || !cert.RewardClaimed {
				t.Error("expected redeemed and reward_claimed flags set")
			}
			if cert.TransferLocked {
				t.Error("expected transfer lock cleared after redemption")
			}
		}
	})

	t.Run("redemption_skipping_partial", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		// No phase-one claim: redemption pays principal plus the full reward.
		_, err := stack.treasury.AddReward(admin.ID, round.ID, 1060)
		testutil.AssertNoError(t, err)
		stack.claims.SetNowFunc(atRedemption(round))
		result, err := stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		if result.TotalPayout != 1060 {
			t.Errorf("expected total payout 1060, got %d", result.TotalPayout)
		}
		for _, payout := range result.Payouts {
			if payout.Amount != 530 {
				t.Errorf("expected payout 530, got %d", payout.Amount)
			}
		}
	})

	t.Run("double_claim_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 100)
		testutil.AssertNoError(t, err)
		stack.claims.SetNowFunc(atPhase1(round))

		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		// A second claim in the same phase pays nothing even with pool funds left.
		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertAppError(t, err, "NOTHING_TO_CLAIM")

		wallet, err := stack.wallets.BalanceOf(investor.ID)
		testutil.AssertNoError(t, err)
		if wallet.Balance != 30 {
			t.Errorf("expected wallet 30 after rejected double claim, got %d", wallet.Balance)
		}
	})

	t.Run("double_redemption_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 2000)
		testutil.AssertNoError(t, err)
		stack.claims.SetNowFunc(atRedemption(round))

		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertAppError(t, err, "NOTHING_TO_CLAIM")
	})

	t.Run("before_first_phase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 100)
		testutil.AssertNoError(t, err)

		// One hour short of the phase-one wait.
		stack.claims.SetNowFunc(func() time.Time {
			return round.OpenUntil.Add(phase1Wait - time.Hour)
		})
		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertAppError(t, err, "NOTHING_TO_CLAIM")
	})

	t.Run("insufficient_pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		_, investor, round := setupClaimRound(t, db, stack)

		// Ledger holds the raised 1000 but the pool was never funded.
		stack.claims.SetNowFunc(atPhase1(round))
		_, err := stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertAppError(t, err, "INSUFFICIENT_POOL")

		// The failed claim must leave every certificate claimable.
		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Find(&certs)
		for _, cert := range certs {
			if cert.RewardClaimed || cert.Redeemed || cert.TransferLocked {
				t.Error("expected untouched claim flags after pool shortfall")
			}
		}
	})

	t.Run("explicit_certificate_set", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 100)
		testutil.AssertNoError(t, err)

		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Order("id").Find(&certs)

		stack.claims.SetNowFunc(atPhase1(round))
		result, err := stack.claims.ClaimRound(investor.ID, round.ID, []uint{certs[0].ID})
		testutil.AssertNoError(t, err)

		if result.TotalPayout != 15 {
			t.Errorf("expected total payout 15 for one certificate, got %d", result.TotalPayout)
		}

		// The other certificate is still claimable on its own.
		result, err = stack.claims.ClaimRound(investor.ID, round.ID, []uint{certs[1].ID})
		testutil.AssertNoError(t, err)
		if result.TotalPayout != 15 {
			t.Errorf("expected total payout 15 for the second certificate, got %d", result.TotalPayout)
		}
	})

	t.Run("duplicate_certificate_ids", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 100)
		testutil.AssertNoError(t, err)

		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Order("id").Find(&certs)

		stack.claims.SetNowFunc(atPhase1(round))
		_, err = stack.claims.ClaimRound(investor.ID, round.ID, []uint{certs[0].ID, certs[0].ID})
		testutil.AssertAppError(t, err, "DUPLICATE_CERTIFICATE")
	})

	t.Run("foreign_round_certificate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		other := testutil.CreateTestRound(t, db, admin.ID, 100, 500, 10)
		foreign := testutil.CreateTestCertificate(t, db, investor.ID, other)

		stack.claims.SetNowFunc(atPhase1(round))
		_, err := stack.claims.ClaimRound(investor.ID, round.ID, []uint{foreign.ID})
		testutil.AssertAppError(t, err, "INVALID_PARAMETERS")
	})

	t.Run("transferred_certificate_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)
		other := testutil.CreateTestUser(t, db)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 100)
		testutil.AssertNoError(t, err)

		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Order("id").Find(&certs)

		// One certificate changed hands before the claim.
		_, err = stack.certificates.Transfer(investor.ID, certs[0].ID, other.ID)
		testutil.AssertNoError(t, err)

		stack.claims.SetNowFunc(atPhase1(round))
		result, err := stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		if result.TotalPayout != 15 {
			t.Errorf("expected payout 15 for the remaining certificate, got %d", result.TotalPayout)
		}

		// The new holder claims the transferred certificate instead.
		result, err = stack.claims.ClaimRound(other.ID, round.ID, nil)
		testutil.AssertNoError(t, err)
		if result.TotalPayout != 15 {
			t.Errorf("expected payout 15 for the transferred certificate, got %d", result.TotalPayout)
		}
	})

	t.Run("inactive_round", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		_, investor, round := setupClaimRound(t, db, stack)
		db.Model(&models.Round{}).Where("id = ?", round.ID).Update("is_active", false)

		stack.claims.SetNowFunc(atPhase1(round))
		_, err := stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertAppError(t, err, "ROUND_INACTIVE")
	})

	t.Run("transfer_lock_lifecycle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)
		other := testutil.CreateTestUser(t, db)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 2000)
		testutil.AssertNoError(t, err)

		var certs []models.Certificate
		db.Where("round_id = ?", round.ID).Order("id").Find(&certs)

		stack.claims.SetNowFunc(atPhase1(round))
		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		// Locked between the partial reward claim and redemption.
		_, err = stack.certificates.Transfer(investor.ID, certs[0].ID, other.ID)
		testutil.AssertAppError(t, err, "TRANSFER_LOCKED")

		stack.claims.SetNowFunc(atRedemption(round))
		_, err = stack.claims.ClaimRound(investor.ID, round.ID, nil)
		testutil.AssertNoError(t, err)

		// Redemption clears the lock; the spent certificate can move again.
		_, err = stack.certificates.Transfer(investor.ID, certs[0].ID, other.ID)
		testutil.AssertNoError(t, err)
	})
}

func TestClaimable(t *testing.T) {
	t.Run("zero_before_first_phase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		_, investor, round := setupClaimRound(t, db, stack)

		result, err := stack.claims.Claimable(investor.ID, round.ID)
		testutil.AssertNoError(t, err)
		if result.TotalPayout != 0 {
			t.Errorf("expected zero claimable before first phase, got %d", result.TotalPayout)
		}
		if len(result.Payouts) != 0 {
			t.Errorf("expected no payouts, got %d", len(result.Payouts))
		}
	})

	t.Run("preview_does_not_settle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		admin, investor, round := setupClaimRound(t, db, stack)

		_, err := stack.treasury.AddReward(admin.ID, round.ID, 100)
		testutil.AssertNoError(t, err)

		stack.claims.SetNowFunc(atPhase1(round))
		result, err := stack.claims.Claimable(investor.ID, round.ID)
		testutil.AssertNoError(t, err)
		if result.TotalPayout != 30 {
			t.Errorf("expected claimable 30, got %d", result.TotalPayout)
		}

		// The preview must not flip any flags or move funds.
		again, err := stack.claims.Claimable(investor.ID, round.ID)
		testutil.AssertNoError(t, err)
		if again.TotalPayout != 30 {
			t.Errorf("expected claimable to stay 30, got %d", again.TotalPayout)
		}

		wallet, err := stack.wallets.BalanceOf(investor.ID)
		testutil.AssertNoError(t, err)
		if wallet.Balance != 0 {
			t.Errorf("expected untouched wallet, got %d", wallet.Balance)
		}
	})

	t.Run("round_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stack := newTestStack(db)
		investor := testutil.CreateTestUser(t, db)

		_, err := stack.claims.Claimable(investor.ID, 9999)
		testutil.AssertAppError(t, err, "ROUND_NOT_FOUND")
	})
}
