package probe

import (
	"context"
	"net"
	"time"
)

// checkTimeout bounds a single network check end to end.
const checkTimeout = 5 * time.Second

// Outcome is the result of one check run. A failed outcome is a normal
// return value, not an error: one unhealthy target must never abort
// evaluation of the other checks.
type Outcome struct {
	Failed bool
	// Reason describes the failure; set iff Failed.
	Reason string
	// Exclusive marks this outcome as overriding every other result of
	// the current cycle. The first exclusive outcome in registration
	// order wins and stops further evaluation.
	Exclusive bool
}

// Success returns a plain successful outcome.
func Success() Outcome {
	return Outcome{}
}

// Failure returns a failed outcome with the given reason.
func Failure(reason string) Outcome {
	return Outcome{Failed: true, Reason: reason}
}

// IgnoreOtherResults returns a copy of the outcome with the exclusive
// flag set.
func (o Outcome) IgnoreOtherResults() Outcome {
	o.Exclusive = true
	return o
}

// Checker is implemented by every check variant. Instances are built
// from the configuration once at startup; a variant whose enabling
// options are absent simply never joins the active set.
type Checker interface {
	// Name identifies the check instance in the failing-checks report.
	// It includes the probed target so operators can correlate a
	// failure with the configuration.
	Name() string

	// Run executes the check exactly once. A returned error means the
	// check could not be executed at all; an unhealthy target is
	// reported through a failed Outcome instead. Run bounds its own
	// runtime and never blocks indefinitely.
	Run(ctx context.Context) (Outcome, error)
}

// Dialer is the connect seam shared by the network-level checks.
// *net.Dialer satisfies it; tests substitute scripted connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
