package background

import (
	"context"
	"log/slog"
	"time"
)

// ResetTokenSweeper is the storage surface the cleanup loop needs
type ResetTokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// AttemptPruner drops rate limit windows that have rolled over
type AttemptPruner interface {
	Prune() int
}

// CleanupManager periodically clears expired reset tokens and stale
// rate limit windows. Expired tokens are already unusable, the sweep
// just keeps the table and the attempt map from growing without bound.
type CleanupManager struct {
	sweeper  ResetTokenSweeper
	pruner   AttemptPruner
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	sweeper ResetTokenSweeper,
	pruner AttemptPruner,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		sweeper:  sweeper,
		pruner:   pruner,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsCleared, err := cm.sweeper.ClearExpiredResetTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
	} else if rowsCleared > 0 {
		cm.logger.Info("expired reset tokens cleared", slog.Int64("rows_cleared", rowsCleared))
	}

	if pruned := cm.pruner.Prune(); pruned > 0 {
		cm.logger.Info("stale rate limit windows pruned", slog.Int("windows_pruned", pruned))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
