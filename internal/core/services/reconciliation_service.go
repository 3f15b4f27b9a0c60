package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/bankaroo/banking_app/internal/apperrors"
	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
)

// reconcileBatchSize caps how many stale entries a single sweep touches.
const reconcileBatchSize = 100

// ReconciliationService sweeps the ledger for entries stuck in flight. An
// entry left pending past the stale window means its settle unit never
// committed, so failing it is safe: the atomic unit guarantees no balance
// was touched. Settlement records that contradict themselves are only
// reported, never auto-corrected.
type ReconciliationService struct {
	txnRepo    portsrepo.TransactionRepositoryFacade
	logger     *slog.Logger
	interval   time.Duration
	staleAfter time.Duration
}

func NewReconciliationService(txnRepo portsrepo.TransactionRepositoryFacade, logger *slog.Logger, interval, staleAfter time.Duration) *ReconciliationService {
	return &ReconciliationService{
		txnRepo:    txnRepo,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// ReconcileOnce runs a single sweep and returns the number of stale pending
// entries it failed out.
func (s *ReconciliationService) ReconcileOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.staleAfter)
	stale, err := s.txnRepo.FindStalePending(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		s.logger.Error("Reconciliation scan failed", slog.String("error", err.Error()))
		return 0, err
	}

	failed := 0
	now := time.Now()
	for _, txn := range stale {
		if err := s.txnRepo.MarkTransactionFailed(ctx, txn.TransactionID, now); err != nil {
			s.logger.Error("Failed to fail out stale entry",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("error", err.Error()),
			)
			continue
		}
		failed++
		s.logger.Warn("Stale pending entry failed out",
			slog.String("transaction_id", txn.TransactionID),
			slog.Time("created_at", txn.CreatedAt),
		)
	}

	inconsistent, err := s.txnRepo.FindInconsistentSettlements(ctx, reconcileBatchSize)
	if err != nil {
		s.logger.Error("Inconsistency scan failed", slog.String("error", err.Error()))
		return failed, err
	}
	for _, txn := range inconsistent {
		// Operator attention required; the record is evidence and must not
		// be rewritten by the sweep.
		s.logger.Error("Inconsistent settlement detected",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("status", string(txn.Status)),
			slog.Bool("is_successful", txn.IsSuccessful),
			slog.String("error", apperrors.ErrInconsistentSettlement.Error()),
		)
	}

	return failed, nil
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *ReconciliationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Reconciliation worker started",
		slog.Duration("interval", s.interval),
		slog.Duration("stale_after", s.staleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reconciliation worker stopped")
			return
		case <-ticker.C:
			if _, err := s.ReconcileOnce(ctx); err != nil {
				s.logger.Error("Reconciliation sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
