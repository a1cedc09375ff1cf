package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultGroup is the bridge's built-in group containing all known lights.
	DefaultGroup = 0
)

// Client is a Hue bridge client. It holds the session for exactly one bridge:
// its network address and the application credential issued by pairing.
//
// A Client is not safe for concurrent Setup or Reset calls. Resource calls
// only read the session and may be issued once Setup has returned.
type Client struct {
	address    string
	credential string

	httpClient *http.Client
	logger     *slog.Logger
	verbosity  Verbosity

	store      SettingsStore
	discoverer Discoverer
	pairer     *Pairer
}

// Option configures a Client.
type Option func(*Client)

// WithAddress sets the bridge address, skipping discovery when a credential
// is also known.
func WithAddress(address string) Option {
	return func(c *Client) {
		c.address = address
	}
}

// WithCredential sets the application credential (the bridge "username").
func WithCredential(credential string) Option {
	return func(c *Client) {
		c.credential = credential
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
// This option can be applied in any order relative to other options.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithSettingsStore sets where the address and credential are persisted.
// Use NewMemorySettingsStore to keep them for the life of the process only.
func WithSettingsStore(store SettingsStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithDiscoverer replaces the SSDP discovery used by Setup.
func WithDiscoverer(d Discoverer) Option {
	return func(c *Client) {
		c.discoverer = d
	}
}

// WithDeviceType sets the application identity sent to the bridge when pairing.
func WithDeviceType(appName, deviceName string) Option {
	return func(c *Client) {
		c.pairer.DeviceType = NewDeviceType(appName, deviceName)
	}
}

// WithPairingPolicy sets how many times and how often the bridge is polled
// while waiting for the link button.
func WithPairingPolicy(attempts int, interval time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.pairer.Attempts = attempts
		}
		if interval > 0 {
			c.pairer.Interval = interval
		}
	}
}

// NewClient creates a new Hue client. It performs no I/O; call Setup to load
// or establish the session. Settings are kept in DefaultSettingsFile in the
// working directory unless WithSettingsStore says otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		verbosity: VerbosityMessages,
		store:     NewFileSettingsStore(DefaultSettingsFile),
		pairer:    NewPairer(DefaultDeviceType()),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.logger == nil {
		c.logger = NewDiagnosticLogger(nil, c.verbosity)
	}
	if c.discoverer == nil {
		c.discoverer = NewSSDPDiscovery(0)
	}
	attachLogger(c.discoverer, c.logger)
	if c.pairer.HTTPClient == nil {
		// Pairing requests bypass do(), so they are logged at the transport.
		c.pairer.HTTPClient = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &LoggingTransport{Base: c.httpClient.Transport, Logger: c.logger},
		}
	}
	if c.pairer.Logger == nil {
		c.pairer.Logger = c.logger
	}

	return c
}

// attachLogger gives the built-in discoverers the client's logger unless they
// already have one.
func attachLogger(d Discoverer, logger *slog.Logger) {
	switch d := d.(type) {
	case *SSDPDiscovery:
		if d.Logger == nil {
			d.Logger = logger
		}
	case *MDNSDiscovery:
		if d.Logger == nil {
			d.Logger = logger
		}
	case MultiDiscoverer:
		for _, inner := range d {
			attachLogger(inner, logger)
		}
	}
}

// Connect creates a client and runs Setup.
func Connect(ctx context.Context, opts ...Option) (*Client, error) {
	c := NewClient(opts...)
	if err := c.Setup(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Address returns the current bridge address.
func (c *Client) Address() string {
	return c.address
}

// Credential returns the current application credential.
func (c *Client) Credential() string {
	return c.credential
}

// Verbosity returns the diagnostic output level the client was built with.
func (c *Client) Verbosity() Verbosity {
	return c.verbosity
}

// Connected reports whether both address and credential are set.
func (c *Client) Connected() bool {
	return c.address != "" && c.credential != ""
}

// URL returns the authenticated URL for a resource path such as "lights/3/state".
func (c *Client) URL(path string) string {
	return fmt.Sprintf("%s/api/%s/%s", baseURL(c.address), c.credential, strings.TrimPrefix(path, "/"))
}

// baseURL adds the http scheme unless the address already carries one.
func baseURL(address string) string {
	if strings.Contains(address, "://") {
		return strings.TrimSuffix(address, "/")
	}
	return "http://" + address
}

// Fetch performs an authenticated GET of path and returns the JSON body.
// A bridge error array in the response is returned as a *BridgeError.
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}
	raw, err := c.do(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return nil, err
	}
	if err := bridgeErrors(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Update performs an authenticated PUT of payload to path and returns the
// bridge's JSON response unmodified. Use ParseResults to inspect it.
func (c *Client) Update(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}
	return c.do(ctx, http.MethodPut, c.URL(path), payload)
}

// do performs an HTTP request and returns the response body as validated JSON.
func (c *Client) do(ctx context.Context, method, url string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		c.logger.LogAttrs(ctx, slog.LevelDebug, "api_payload", slog.String("body", string(data)))
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.LogRequest(ctx, method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.LogResponse(ctx, method, url, 0, time.Since(start), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.LogResponse(ctx, method, url, resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncatePreview(respBody)}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (body: %s)", err, truncatePreview(respBody))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "api_body", slog.String("body", truncatePreview(raw)))

	return raw, nil
}
