package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/models"
	"crowdbond/internal/money"
)

// Claim phases are measured from the round's investment close, not from each
// certificate's purchase time.
const (
	phase1Wait     = 180 * 24 * time.Hour
	redemptionWait = 365 * 24 * time.Hour
)

// claimService is the phased payout engine. Per certificate it walks
// UNCLAIMED -> PHASE1_CLAIMED -> REDEEMED (REDEEMED is also directly
// reachable) and guarantees each phase pays exactly once.
type claimService struct {
	db           *gorm.DB
	treasury     TreasuryServicer
	certificates CertificateServicer
	wallets      WalletServicer
	locks        *RoundLocks
	now          func() time.Time
}

// NewClaimService creates a new ClaimServicer.
func NewClaimService(db *gorm.DB, treasury TreasuryServicer, certificates CertificateServicer, wallets WalletServicer, locks *RoundLocks) ClaimServicer {
	return &claimService{
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
func (s *claimService) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// payoutFor computes a certificate's payable entitlement at the given time.
// The claim-state checks run strictly before any arithmetic: a certificate
// whose current phase is already claimed yields zero without touching the
// amounts. This ordering closed a double-claim hole where the payout was
// computed first and the state consulted after.
func payoutFor(cert *models.Certificate, openUntil, now time.Time) (int64, ClaimPhase, error) {
	if cert.Redeemed {
		return 0, PhaseNone, nil
	}

	elapsed := now.Sub(openUntil)
	if elapsed < phase1Wait {
		return 0, PhaseNone, nil
	}
	if elapsed < redemptionWait && cert.RewardClaimed {
		return 0, PhaseNone, nil
	}

	principal, err := money.Mul(cert.Quantity, cert.UnitPriceSnapshot)
	if err != nil {
		return 0, PhaseNone, err
	}
	reward, err := money.ApplyBps(principal, cert.RewardRateBpsSnapshot)
	if err != nil {
		return 0, PhaseNone, err
	}

	if elapsed < redemptionWait {
		return reward / 2, PhasePartialReward, nil
	}

	if cert.RewardClaimed {
		// Phase one already paid half the reward.
		reward -= reward / 2
	}
	total, err := money.Add(principal, reward)
	if err != nil {
		return 0, PhaseNone, err
	}
	return total, PhaseRedemption, nil
}

// collect resolves the claim's certificate set inside the transaction.
// Ownership is re-read at call time: certificates that changed hands since
// purchase are skipped, not an error. An explicit id set is rejected on
// duplicates and on certificates from other rounds.
func (s *claimService) collect(tx *gorm.DB, userID, roundID uint, certificateIDs []uint) ([]models.Certificate, error) {
	if len(certificateIDs) == 0 {
		return s.certificates.OwnedInRound(tx, userID, roundID)
	}

	seen := make(map[uint]struct{}, len(certificateIDs))
	certs := make([]models.Certificate, 0, len(certificateIDs))
	for _, id := range certificateIDs {
		if _, dup := seen[id]; dup {
			return nil, apperrors.ErrDuplicateCertificate
		}
		seen[id] = struct{}{}

		var cert models.Certificate
		if err := tx.First(&cert, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.ErrCertificateNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if cert.RoundID != roundID {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidParameters, "certificate belongs to a different round")
		}
		if cert.OwnerID != userID {
			continue
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// ClaimRound settles every payable certificate the caller holds in the
// round. The evaluation runs first without mutating anything; the treasury
// debit and claim-flag transitions then commit before the single aggregate
// wallet credit, and the whole operation rolls back as one on any failure.
func (s *claimService) ClaimRound(userID, roundID uint, certificateIDs []uint) (*ClaimResult, error) {
	unlock := s.locks.Lock(roundID)
	defer unlock()

	round, err := loadRound(s.db, roundID)
	if err != nil {
		return nil, err
	}
	if !round.IsActive {
		return nil, apperrors.ErrRoundInactive
	}

	now := s.now()
	var result *ClaimResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		certs, txErr := s.collect(tx, userID, roundID, certificateIDs)
		if txErr != nil {
			return txErr
		}

		total := int64(0)
		payouts := make([]CertificatePayout, 0, len(certs))
		for i := range certs {
			amount, phase, evalErr := payoutFor(&certs[i], round.OpenUntil, now)
			if evalErr != nil {
				return evalErr
			}
			if amount == 0 {
				continue
			}
			total, evalErr = money.Add(total, amount)
			if evalErr != nil {
				return evalErr
			}
			payouts = append(payouts, CertificatePayout{
				CertificateID: certs[i].ID,
				Amount:        amount,
				Phase:         phase,
			})
		}

		if total == 0 {
			return apperrors.ErrNothingToClaim
		}

		// The pool check and debit happen before the claim flags flip, so a
		// shortfall aborts with every certificate still claimable.
		if txErr := s.treasury.Debit(tx, roundID, total, true, models.TreasurySourceClaim, userID); txErr != nil {
			return txErr
		}

		for _, payout := range payouts {
			switch payout.Phase {
			case PhasePartialReward:
				if txErr := s.certificates.SetRewardClaimed(tx, payout.CertificateID); txErr != nil {
					return txErr
				}
				if txErr := s.certificates.SetTransferLock(tx, payout.CertificateID, true); txErr != nil {
					return txErr
				}
			case PhaseRedemption:
				if txErr := s.certificates.SetRedeemed(tx, payout.CertificateID); txErr != nil {
					return txErr
				}
				if txErr := s.certificates.SetRewardClaimed(tx, payout.CertificateID); txErr != nil {
					return txErr
				}
				if txErr := s.certificates.SetTransferLock(tx, payout.CertificateID, false); txErr != nil {
					return txErr
				}
			}
		}

		// Fund transfer last: all claim state is already committed to the
		// transaction when the wallet is credited.
		if txErr := s.wallets.Credit(tx, userID, total); txErr != nil {
			return txErr
		}

		result = &ClaimResult{RoundID: roundID, TotalPayout: total, Payouts: payouts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Claimable previews the caller's payable entitlement in a round without
// settling anything. A zero total is a valid answer here; only ClaimRound
// treats it as a failure.
func (s *claimService) Claimable(userID, roundID uint) (*ClaimResult, error) {
	round, err := loadRound(s.db, roundID)
	if err != nil {
		return nil, err
	}

	certs, err := s.certificates.OwnedInRound(s.db, userID, roundID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	total := int64(0)
	payouts := make([]CertificatePayout, 0, len(certs))
	for i := range certs {
		amount, phase, evalErr := payoutFor(&certs[i], round.OpenUntil, now)
		if evalErr != nil {
			return nil, evalErr
		}
		if amount == 0 {
			continue
		}
		total, evalErr = money.Add(total, amount)
		if evalErr != nil {
			return nil, evalErr
		}
		payouts = append(payouts, CertificatePayout{
			CertificateID: certs[i].ID,
			Amount:        amount,
			Phase:         phase,
		})
	}

	return &ClaimResult{RoundID: roundID, TotalPayout: total, Payouts: payouts}, nil
}
