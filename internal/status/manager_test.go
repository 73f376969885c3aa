package status

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/easycheck/internal/config"
	"github.com/hamed0406/easycheck/internal/probe"
)

// fakeChecker returns a scripted result, optionally after a delay so
// tests can force any completion order.
type fakeChecker struct {
	name    string
	outcome probe.Outcome
	err     error
	delay   time.Duration
}

func (f *fakeChecker) Name() string { return f.name }

func (f *fakeChecker) Run(ctx context.Context) (probe.Outcome, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.outcome, f.err
}

func newTestManager(checkers ...probe.Checker) *Manager {
	return NewManager(checkers, time.Second, zap.NewNop())
}

func TestManager_InitialStateIsFailed(t *testing.T) {
	m := newTestManager()
	current := m.Holder().Current()

	assert.Equal(t, http.StatusServiceUnavailable, current.StatusCode)
	require.Len(t, current.FailingChecks, 1)
	assert.Equal(t, "Initial Check", current.FailingChecks[0].CheckName)
	assert.NotEmpty(t, current.FailingChecks[0].FailureReason)
}

func TestManager_ZeroChecksIsVacuouslyHealthy(t *testing.T) {
	m := newTestManager()
	m.ExecuteChecks(context.Background())

	current := m.Holder().Current()
	assert.Equal(t, http.StatusOK, current.StatusCode)
	require.NotNil(t, current.FailingChecks)
	assert.Empty(t, current.FailingChecks)
}

func TestManager_TwoFailuresKeepRegistrationOrder(t *testing.T) {
	m := newTestManager(
		// the first checker finishes last; the fold must still visit
		// it first
		&fakeChecker{name: "a", outcome: probe.Failure("a broke"), delay: 50 * time.Millisecond},
		&fakeChecker{name: "b", outcome: probe.Failure("b broke")},
	)
	m.ExecuteChecks(context.Background())

	current := m.Holder().Current()
	assert.Equal(t, http.StatusServiceUnavailable, current.StatusCode)
	require.Len(t, current.FailingChecks, 2)
	assert.Equal(t, FailingCheck{CheckName: "a", FailureReason: "a broke"}, current.FailingChecks[0])
	assert.Equal(t, FailingCheck{CheckName: "b", FailureReason: "b broke"}, current.FailingChecks[1])
}

func TestManager_ExclusiveSuccessOverridesFailures(t *testing.T) {
	for name, checkers := range map[string][]probe.Checker{
		"override registered after failure": {
			&fakeChecker{name: "fails", outcome: probe.Failure("nope")},
			&fakeChecker{name: "force", outcome: probe.Success().IgnoreOtherResults()},
		},
		"override registered before failure": {
			&fakeChecker{name: "force", outcome: probe.Success().IgnoreOtherResults()},
			&fakeChecker{name: "fails", outcome: probe.Failure("nope")},
		},
		"override finishes last": {
			&fakeChecker{name: "fails", outcome: probe.Failure("nope")},
			&fakeChecker{name: "force", outcome: probe.Success().IgnoreOtherResults(), delay: 50 * time.Millisecond},
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(checkers...)
			m.ExecuteChecks(context.Background())

			current := m.Holder().Current()
			assert.Equal(t, http.StatusOK, current.StatusCode)
			assert.Empty(t, current.FailingChecks)
		})
	}
}

func TestManager_ExclusiveFailureStandsAlone(t *testing.T) {
	m := newTestManager(
		&fakeChecker{name: "early", outcome: probe.Failure("early broke")},
		&fakeChecker{name: "mtc", outcome: probe.Failure("maintenance").IgnoreOtherResults()},
		&fakeChecker{name: "late", outcome: probe.Failure("late broke")},
	)
	m.ExecuteChecks(context.Background())

	current := m.Holder().Current()
	assert.Equal(t, http.StatusServiceUnavailable, current.StatusCode)
	require.Len(t, current.FailingChecks, 1)
	assert.Equal(t, FailingCheck{CheckName: "mtc", FailureReason: "maintenance"}, current.FailingChecks[0])
}

func TestManager_CheckErrorBecomesFailure(t *testing.T) {
	m := newTestManager(
		&fakeChecker{name: "broken", err: assert.AnError},
	)
	m.ExecuteChecks(context.Background())

	current := m.Holder().Current()
	assert.Equal(t, http.StatusServiceUnavailable, current.StatusCode)
	require.Len(t, current.FailingChecks, 1)
	assert.Equal(t, "broken", current.FailingChecks[0].CheckName)
	assert.Contains(t, current.FailingChecks[0].FailureReason, "check failed with error:")
	assert.Contains(t, current.FailingChecks[0].FailureReason, assert.AnError.Error())
}

func TestManager_CyclesAreIdempotent(t *testing.T) {
	m := newTestManager(
		&fakeChecker{name: "fails", outcome: probe.Failure("still broken")},
		&fakeChecker{name: "ok", outcome: probe.Success()},
	)

	m.ExecuteChecks(context.Background())
	first := m.Holder().Current()
	m.ExecuteChecks(context.Background())
	second := m.Holder().Current()

	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.FailingChecks, second.FailingChecks)
	assert.False(t, second.Timestamp.Before(first.Timestamp))
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	m := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	// the immediate first cycle still ran
	assert.Equal(t, http.StatusOK, m.Holder().Current().StatusCode)
}

func missingPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestNewManagerFromConfig_HealthyWithoutMarkers(t *testing.T) {
	cfg := config.Config{
		ForceSuccessFilePath: missingPath(t, "force"),
		MtcFilePath:          missingPath(t, "mtc"),
	}
	m, err := NewManagerFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)

	m.ExecuteChecks(context.Background())
	current := m.Holder().Current()
	assert.Equal(t, http.StatusOK, current.StatusCode)
	assert.Empty(t, current.FailingChecks)
}

func TestNewManagerFromConfig_MtcMarkerMakesUnavailable(t *testing.T) {
	mtc := missingPath(t, "mtc")
	require.NoError(t, os.WriteFile(mtc, nil, 0o644))

	cfg := config.Config{
		ForceSuccessFilePath: missingPath(t, "force"),
		MtcFilePath:          mtc,
	}
	m, err := NewManagerFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)

	m.ExecuteChecks(context.Background())
	current := m.Holder().Current()
	assert.Equal(t, http.StatusServiceUnavailable, current.StatusCode)
	require.Len(t, current.FailingChecks, 1)
	assert.Equal(t, "mtc file", current.FailingChecks[0].CheckName)
}

func TestNewManagerFromConfig_ForceSuccessOverridesMtc(t *testing.T) {
	force := missingPath(t, "force")
	mtc := missingPath(t, "mtc")
	require.NoError(t, os.WriteFile(force, nil, 0o644))
	require.NoError(t, os.WriteFile(mtc, nil, 0o644))

	cfg := config.Config{ForceSuccessFilePath: force, MtcFilePath: mtc}
	m, err := NewManagerFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)

	m.ExecuteChecks(context.Background())
	current := m.Holder().Current()
	assert.Equal(t, http.StatusOK, current.StatusCode)
	assert.Empty(t, current.FailingChecks)
}

func TestNewManagerFromConfig_MalformedURLFails(t *testing.T) {
	cfg := config.Config{HTTPCheckURL: "http://not-an-ip:8080/"}
	_, err := NewManagerFromConfig(cfg, zap.NewNop())
	assert.Error(t, err)
}
