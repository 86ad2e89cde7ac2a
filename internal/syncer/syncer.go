// Package syncer periodically flushes dirty snapshots to disk. Inline
// snapshot writes are rate-limited, so this scheduler is what guarantees
// coalesced mutations eventually reach the store.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"parley/pkg/logger"
	"parley/pkg/snapshot"
)

// DefaultCron flushes once a minute.
const DefaultCron = "* * * * *"

// Start launches the flush scheduler and returns its cancel func. An empty
// cron expression falls back to DefaultCron; an invalid one is an error.
func Start(ctx context.Context, cronExpr string, p *snapshot.Persister) (context.CancelFunc, error) {
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("syncer_invalid_cron", zap.String("cron", cronExpr))
		return nil, fmt.Errorf("invalid snapshot cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go run(ctx2, cronExpr, p)
	logger.Info("syncer_started", zap.String("cron", cronExpr))
	return cancel, nil
}

// run computes the next tick with gronx and sleeps until then, flushing on
// every tick until the context is canceled.
func run(ctx context.Context, cronExpr string, p *snapshot.Persister) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("syncer_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("syncer_nexttick_failed", zap.String("cron", cronExpr), zap.Error(err))
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if err := p.Flush(); err != nil {
				logger.Error("syncer_flush_error", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("syncer_stopping")
			return
		}
	}
}
