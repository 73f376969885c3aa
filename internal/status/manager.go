package status

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/easycheck/internal/config"
	"github.com/hamed0406/easycheck/internal/metrics"
	"github.com/hamed0406/easycheck/internal/probe"
)

// Manager owns the ordered set of active checks and turns their
// results into the published verdict. The check slice is read-only
// after construction.
type Manager struct {
	checkers []probe.Checker
	holder   *Holder
	interval time.Duration
	logger   *zap.Logger
}

// NewManager wires a manager from an explicit check set. The slice
// order is significant: results are folded in registration order.
func NewManager(checkers []probe.Checker, interval time.Duration, logger *zap.Logger) *Manager {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Manager{
		checkers: checkers,
		holder:   NewHolder(),
		interval: interval,
		logger:   logger,
	}
}

// NewManagerFromConfig registers every check that is enabled by the
// configuration, in the fixed order the fold depends on. A malformed
// option surfaces as an error; the process must not start serving an
// undefined configuration.
func NewManagerFromConfig(cfg config.Config, logger *zap.Logger) (*Manager, error) {
	var checkers []probe.Checker

	if c, err := probe.NewForceSuccessFileCheck(cfg, logger); err != nil {
		return nil, err
	} else if c != nil {
		checkers = append(checkers, c)
	}
	if c, err := probe.NewMtcFileCheck(cfg, logger); err != nil {
		return nil, err
	} else if c != nil {
		checkers = append(checkers, c)
	}
	if c, err := probe.NewHTTPResponseCheck(cfg, logger); err != nil {
		return nil, err
	} else if c != nil {
		checkers = append(checkers, c)
	}
	if c, err := probe.NewNetworkConnectionCheck(cfg, logger); err != nil {
		return nil, err
	} else if c != nil {
		checkers = append(checkers, c)
	}

	return NewManager(checkers, cfg.RevalidateInterval, logger), nil
}

// Holder returns the verdict cell read by the exposure layer.
func (m *Manager) Holder() *Holder {
	return m.holder
}

type checkResult struct {
	outcome probe.Outcome
	err     error
}

// ExecuteChecks runs one full cycle: every check concurrently, then a
// deterministic fold over the results in registration order, then one
// wholesale verdict replacement.
func (m *Manager) ExecuteChecks(ctx context.Context) {
	started := time.Now()

	results := make([]checkResult, len(m.checkers))
	var group errgroup.Group
	for i, checker := range m.checkers {
		i, checker := i, checker
		group.Go(func() error {
			outcome, err := checker.Run(ctx)
			results[i] = checkResult{outcome: outcome, err: err}
			return nil
		})
	}
	// every check bounds its own runtime, so this join is bounded by
	// the slowest check
	_ = group.Wait()

	failedChecks := make([]FailingCheck, 0, len(m.checkers))
	for i, checker := range m.checkers {
		result := results[i]
		if result.err != nil {
			m.logger.Warn("check_error",
				zap.String("check", checker.Name()),
				zap.Error(result.err),
			)
			metrics.CheckFailures.WithLabelValues(checker.Name()).Inc()
			failedChecks = append(failedChecks, FailingCheck{
				CheckName:     checker.Name(),
				FailureReason: fmt.Sprintf("check failed with error: %v", result.err),
			})
			continue
		}

		outcome := result.outcome
		switch {
		case outcome.Failed && outcome.Exclusive:
			// this failure alone determines the verdict
			metrics.CheckFailures.WithLabelValues(checker.Name()).Inc()
			failedChecks = append(failedChecks[:0], FailingCheck{
				CheckName:     checker.Name(),
				FailureReason: outcome.Reason,
			})
		case outcome.Failed:
			metrics.CheckFailures.WithLabelValues(checker.Name()).Inc()
			failedChecks = append(failedChecks, FailingCheck{
				CheckName:     checker.Name(),
				FailureReason: outcome.Reason,
			})
		case outcome.Exclusive:
			// override to healthy, drop everything accumulated so far
			failedChecks = failedChecks[:0]
		}
		if outcome.Exclusive {
			break
		}
	}

	code := http.StatusOK
	if len(failedChecks) > 0 {
		code = http.StatusServiceUnavailable
	}
	m.holder.set(Results{
		Timestamp:     time.Now(),
		StatusCode:    code,
		FailingChecks: failedChecks,
	})

	metrics.CheckCycles.Inc()
	metrics.CycleDuration.Observe(time.Since(started).Seconds())
	metrics.FailingChecks.Set(float64(len(failedChecks)))

	m.logger.Debug("check_cycle_finished",
		zap.Int("status_code", code),
		zap.Int("failing", len(failedChecks)),
		zap.Duration("elapsed", time.Since(started)),
	)
}

// Run executes an immediate first cycle, then one cycle per interval
// tick until the context is cancelled. At most one cycle runs at a
// time.
func (m *Manager) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.ExecuteChecks(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("status_checks_stopped")
			return
		case <-t.C:
			m.ExecuteChecks(ctx)
		}
	}
}
