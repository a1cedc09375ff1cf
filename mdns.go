package hue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/mdns"
)

// BridgeService is the mDNS service type advertised by Hue bridges.
const BridgeService = "_hue._tcp"

// MDNSDiscovery finds the bridge by browsing for its mDNS service.
type MDNSDiscovery struct {
	// Timeout bounds the mDNS query. Defaults to 3 seconds if zero.
	Timeout time.Duration

	// Query runs the mDNS lookup. Defaults to mdns.QueryContext.
	Query func(ctx context.Context, params *mdns.QueryParam) error

	Logger *slog.Logger
}

// NewMDNSDiscovery creates a new MDNSDiscovery instance.
func NewMDNSDiscovery(timeout time.Duration) *MDNSDiscovery {
	if timeout == 0 {
		timeout = DefaultDiscoveryTimeout
	}
	return &MDNSDiscovery{Timeout: timeout}
}

// Discover returns the IPv4 address of the first bridge that answers.
func (d *MDNSDiscovery) Discover(ctx context.Context) (string, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}
	query := d.Query
	if query == nil {
		query = mdns.QueryContext
	}
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *mdns.ServiceEntry, 8)
	queryErr := make(chan error, 1)
	// The library writes to log.Default() unless given a logger.
	go func() {
		queryErr <- query(ctx, &mdns.QueryParam{
			Service:             BridgeService,
			Domain:              "local",
			Timeout:             timeout,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
			Logger:              slog.NewLogLogger(log.Handler(), slog.LevelDebug),
		})
		close(entries)
	}()

	for entry := range entries {
		log.LogAttrs(ctx, slog.LevelDebug, "mdns_entry",
			slog.String("name", entry.Name),
			slog.Any("addr", entry.AddrV4),
			slog.Int("port", entry.Port),
		)
		if entry.AddrV4 == nil || entry.AddrV4.IsUnspecified() {
			continue
		}
		cancel()
		go func() {
			for range entries {
			}
		}()
		return entry.AddrV4.String(), nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := <-queryErr; err != nil {
		return "", fmt.Errorf("discovery: mdns: %w", err)
	}
	return "", ErrBridgeNotFound
}

// MultiDiscoverer tries each discoverer in order and returns the first
// address found.
type MultiDiscoverer []Discoverer

// Discover implements Discoverer.
func (m MultiDiscoverer) Discover(ctx context.Context) (string, error) {
	var errs []error
	for _, d := range m {
		addr, err := d.Discover(ctx)
		if err == nil {
			return addr, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !errors.Is(err, ErrBridgeNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(append([]error{ErrBridgeNotFound}, errs...)...)
	}
	return "", ErrBridgeNotFound
}
