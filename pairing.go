package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPairingAttempts is how many times the bridge is polled for a credential.
	DefaultPairingAttempts = 20

	// DefaultPairingInterval is the delay between pairing attempts.
	DefaultPairingInterval = time.Second

	// DefaultAppName is the application part of the default device type.
	DefaultAppName = "hue-go"

	// Bridge limits for the two halves of "devicetype".
	maxAppNameLen    = 20
	maxDeviceNameLen = 19
)

// DeviceType is the application identity registered with the bridge,
// sent as "<app>#<device>".
type DeviceType struct {
	AppName    string
	DeviceName string
}

// NewDeviceType builds a DeviceType, truncating both parts to the bridge's limits.
func NewDeviceType(appName, deviceName string) DeviceType {
	if appName == "" {
		appName = DefaultAppName
	}
	if deviceName == "" {
		deviceName = defaultDeviceName()
	}
	return DeviceType{
		AppName:    truncate(appName, maxAppNameLen),
		DeviceName: truncate(deviceName, maxDeviceNameLen),
	}
}

// DefaultDeviceType identifies this library and the local host.
func DefaultDeviceType() DeviceType {
	return NewDeviceType(DefaultAppName, "")
}

// String returns the "devicetype" value.
func (d DeviceType) String() string {
	return d.AppName + "#" + d.DeviceName
}

// defaultDeviceName is the host name, or a short random id if it is unknown.
func defaultDeviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		host, _, _ = strings.Cut(host, ".")
		return host
	}
	return uuid.NewString()[:8]
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Pairer obtains an application credential from the bridge. The bridge only
// issues one after its physical link button has been pressed, so Pair polls
// until then or until the attempt budget is spent.
type Pairer struct {
	HTTPClient *http.Client
	DeviceType DeviceType
	Attempts   int
	Interval   time.Duration
	Logger     *slog.Logger
}

// NewPairer creates a Pairer with the default 20 × 1s polling policy.
func NewPairer(deviceType DeviceType) *Pairer {
	return &Pairer{
		DeviceType: deviceType,
		Attempts:   DefaultPairingAttempts,
		Interval:   DefaultPairingInterval,
	}
}

// Pair registers the device type with the bridge at address and returns the
// issued credential. It returns ErrPairingTimeout if the link button was not
// pressed within the polling window; transport errors end pairing early.
func (p *Pairer) Pair(ctx context.Context, address string) (string, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultPairingAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPairingInterval
	}
	log := p.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	body, err := json.Marshal(map[string]string{"devicetype": p.DeviceType.String()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pairing request: %w", err)
	}
	url := baseURL(address) + "/api"

	for attempt := 1; attempt <= attempts; attempt++ {
		credential, err := p.attempt(ctx, url, body, log)
		if err != nil {
			return "", err
		}
		if credential != "" {
			return credential, nil
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(interval):
			}
		}
	}

	return "", ErrPairingTimeout
}

// attempt sends one registration request. It returns "" while the bridge has
// not issued a credential yet.
func (p *Pairer) attempt(ctx context.Context, url string, body []byte, log *slog.Logger) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create pairing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pairing request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read pairing response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.LogAttrs(ctx, slog.LevelDebug, "pairing_pending",
			slog.Int("status", resp.StatusCode),
		)
		return "", nil
	}

	credential, err := parsePairingResponse(respBody)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelDebug, "pairing_pending",
			slog.String("reason", err.Error()),
		)
		return "", nil
	}
	return credential, nil
}

// parsePairingResponse extracts the username from
// [{"success":{"username":"..."}}]. Any other body is returned as an error.
func parsePairingResponse(data []byte) (string, error) {
	var results []struct {
		Success *struct {
			Username string `json:"username"`
		} `json:"success"`
		Error *BridgeError `json:"error"`
	}
	if err := json.Unmarshal(data, &results); err != nil {
		return "", fmt.Errorf("failed to parse pairing response: %w (body: %s)", err, truncatePreview(data))
	}
	if len(results) == 0 {
		return "", fmt.Errorf("empty pairing response")
	}

	first := results[0]
	if first.Success != nil && first.Success.Username != "" {
		return first.Success.Username, nil
	}
	if first.Error != nil {
		return "", first.Error
	}
	return "", fmt.Errorf("unrecognized pairing response: %s", truncatePreview(data))
}
