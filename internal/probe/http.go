package probe

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/easycheck/internal/config"
)

// HTTPResponseCheck performs exactly one HTTP/1.1 exchange per run and
// classifies the target by response code membership. With a proxy
// protocol version configured the connection is prefixed with a PROXY
// preamble before any HTTP bytes, for backends that sit behind a
// proxy-aware listener.
//
// The exchange is driven over the raw connection (Request.Write plus
// http.ReadResponse) instead of an http.Client: the preamble has to be
// the first thing on the wire and connection pooling or transparent
// retries would both break that guarantee.
type HTTPResponseCheck struct {
	remoteAddr           string
	hostHeaderValue      string
	endpoint             string
	requestLineTarget    string
	httpMethod           string
	upStatusCodes        []int
	proxyProtocolVersion int
	dialer               Dialer
	logger               *zap.Logger
	timeout              time.Duration
}

// NewHTTPResponseCheck builds the HTTP check. Disabled (nil, nil) when
// no URL is configured. The URL host must be a numeric IP address; DNS
// resolution is deliberately not part of the probe.
func NewHTTPResponseCheck(cfg config.Config, logger *zap.Logger) (*HTTPResponseCheck, error) {
	if cfg.HTTPCheckURL == "" {
		return nil, nil
	}

	endpoint, err := url.Parse(cfg.HTTPCheckURL)
	if err != nil {
		return nil, fmt.Errorf("invalid http check url %q: %w", cfg.HTTPCheckURL, err)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("invalid http check url %q: missing host", cfg.HTTPCheckURL)
	}
	if net.ParseIP(endpoint.Hostname()) == nil {
		return nil, fmt.Errorf("http check url must contain an ip address, got %q", endpoint.Hostname())
	}
	port := endpoint.Port()
	if port == "" {
		port = "80"
	}

	httpMethod := strings.ToUpper(cfg.HTTPCheckMethod)
	if httpMethod == "" {
		httpMethod = http.MethodGet
	}

	upStatusCodes := cfg.HTTPCheckStatusCodes
	if len(upStatusCodes) == 0 {
		upStatusCodes = []int{http.StatusOK}
	}
	for _, code := range upStatusCodes {
		if code < 100 || code > 599 {
			return nil, fmt.Errorf("invalid http status code %d", code)
		}
	}

	version := cfg.HTTPProxyProtocolVersion
	if version < 0 || version > 2 {
		return nil, fmt.Errorf("invalid proxy protocol version %d, must be 1 or 2", version)
	}

	return &HTTPResponseCheck{
		remoteAddr:           net.JoinHostPort(endpoint.Hostname(), port),
		hostHeaderValue:      endpoint.Host,
		endpoint:             endpoint.String(),
		requestLineTarget:    endpoint.RequestURI(),
		httpMethod:           httpMethod,
		upStatusCodes:        upStatusCodes,
		proxyProtocolVersion: version,
		dialer:               &net.Dialer{},
		logger:               logger,
		timeout:              checkTimeout,
	}, nil
}

func (c *HTTPResponseCheck) Name() string {
	return fmt.Sprintf("http endpoint check %s", c.endpoint)
}

func (c *HTTPResponseCheck) Run(ctx context.Context) (Outcome, error) {
	c.logger.Debug("checking http endpoint",
		zap.String("endpoint", c.endpoint),
		zap.Int("proxy_protocol_version", c.proxyProtocolVersion),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.remoteAddr)
	if err != nil {
		return Outcome{}, fmt.Errorf("connecting to %s: %w", c.remoteAddr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if c.proxyProtocolVersion != 0 {
		preamble, err := encodeProxyHeader(c.proxyProtocolVersion)
		if err != nil {
			return Outcome{}, fmt.Errorf("encoding proxy protocol header: %w", err)
		}
		if _, err := conn.Write(preamble); err != nil {
			return Outcome{}, fmt.Errorf("writing proxy protocol header: %w", err)
		}
	}

	// the request line must carry the precomputed target verbatim,
	// hence the opaque URL
	request := &http.Request{
		Method:     c.httpMethod,
		URL:        &url.URL{Opaque: c.requestLineTarget},
		Host:       c.hostHeaderValue,
		Header:     make(http.Header),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}
	if err := request.Write(conn); err != nil {
		return Outcome{}, fmt.Errorf("sending request to %s: %w", c.remoteAddr, err)
	}

	response, err := http.ReadResponse(bufio.NewReader(conn), request)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading response from %s: %w", c.remoteAddr, err)
	}
	defer response.Body.Close()

	for _, code := range c.upStatusCodes {
		if response.StatusCode == code {
			return Success(), nil
		}
	}
	return Failure(fmt.Sprintf("received status %d", response.StatusCode)), nil
}
