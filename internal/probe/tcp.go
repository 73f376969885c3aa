package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/easycheck/internal/config"
)

// NetworkConnectionCheck probes the liveness of a line-oriented TCP
// service (SMTP-like greeters included) without full protocol
// awareness: connect, optionally consume the banner, announce the
// close with QUIT and confirm the peer still answers.
type NetworkConnectionCheck struct {
	targetAddr          string
	readInitialResponse bool
	dialer              Dialer
	logger              *zap.Logger
	timeout             time.Duration
}

// NewNetworkConnectionCheck builds the TCP liveness check. Disabled
// (nil, nil) when no socket address is configured; a present but
// non-numeric address is a configuration error.
func NewNetworkConnectionCheck(cfg config.Config, logger *zap.Logger) (*NetworkConnectionCheck, error) {
	if cfg.SocketCheckAddr == "" {
		return nil, nil
	}
	addr, err := netip.ParseAddrPort(cfg.SocketCheckAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid socket check address %q: %w", cfg.SocketCheckAddr, err)
	}
	return &NetworkConnectionCheck{
		targetAddr:          addr.String(),
		readInitialResponse: cfg.SocketCheckReadInitialResponse,
		dialer:              &net.Dialer{},
		logger:              logger,
		timeout:             checkTimeout,
	}, nil
}

func (c *NetworkConnectionCheck) Name() string {
	return fmt.Sprintf("network connection check %s", c.targetAddr)
}

func (c *NetworkConnectionCheck) Run(ctx context.Context) (Outcome, error) {
	c.logger.Debug("checking network connection",
		zap.String("addr", c.targetAddr),
		zap.Bool("read_initial_response", c.readInitialResponse),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.targetAddr)
	if err != nil {
		if ctx.Err() != nil {
			return c.timeoutFailure(), nil
		}
		return Failure(fmt.Sprintf("error connecting to %s: %v", c.targetAddr, err)), nil
	}
	defer conn.Close()

	// the remaining steps share the end-to-end deadline
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if c.readInitialResponse {
		if out, failed := c.readAndDiscardResponse(ctx, conn); failed {
			return out, nil
		}
	}

	if _, err := conn.Write([]byte("QUIT\n")); err != nil {
		if isTimeout(ctx, err) {
			return c.timeoutFailure(), nil
		}
		return Failure(fmt.Sprintf("error sending QUIT message to %s: %v", c.targetAddr, err)), nil
	}

	if out, failed := c.readAndDiscardResponse(ctx, conn); failed {
		return out, nil
	}

	return Success(), nil
}

// readAndDiscardResponse performs one read and throws the data away;
// the content is never inspected. A clean EOF counts as a response.
func (c *NetworkConnectionCheck) readAndDiscardResponse(ctx context.Context, conn net.Conn) (Outcome, bool) {
	buffer := make([]byte, 1024)
	if _, err := conn.Read(buffer); err != nil && !errors.Is(err, io.EOF) {
		if isTimeout(ctx, err) {
			return c.timeoutFailure(), true
		}
		return Failure(fmt.Sprintf("error receiving response: %v", err)), true
	}
	return Outcome{}, false
}

func (c *NetworkConnectionCheck) timeoutFailure() Outcome {
	return Failure(fmt.Sprintf("timeout checking connection to %s", c.targetAddr))
}

// isTimeout reports whether an I/O error was caused by the check's own
// deadline. The conn deadline can trip a moment before the context
// marks itself done, so both are consulted.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
