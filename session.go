package hue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Setup makes sure the client holds a working session. It uses the address and
// credential already set, or loads them from the settings store, and verifies
// them with one round trip. If that fails it discovers the bridge, pairs with
// it (the operator must press the link button) and saves the new settings to
// the client's store, bridge.json by default.
//
// Setup is idempotent: with valid settings every call makes exactly one
// verification request and no discovery or pairing.
func (c *Client) Setup(ctx context.Context) error {
	loaded, err := c.loadSettings(ctx)
	if err != nil {
		return err
	}

	if loaded {
		_, err := c.LightIDs(ctx)
		if err == nil {
			return nil
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Saved bridge settings did not work, setting up again.",
			slog.String("address", c.address),
			slog.String("error", err.Error()),
		)
		c.credential = ""
	}

	if _, err := c.Discover(ctx); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "Couldn't find bridge on LAN.")
		return fmt.Errorf("setup: %w", err)
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "Bridge located at "+c.address)
	c.logger.LogAttrs(ctx, slog.LevelInfo, ">>> Press link button on Hue bridge to register <<<")

	if _, err := c.Pair(ctx); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "Couldn't get username from bridge.")
		return fmt.Errorf("setup: %w", err)
	}

	if err := c.store.Save(ctx, Settings{Address: c.address, Credential: c.credential}); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	return nil
}

// loadSettings fills the session from the store unless it is already set.
// Missing and corrupt settings both report false.
func (c *Client) loadSettings(ctx context.Context) (bool, error) {
	if c.Connected() {
		return true, nil
	}

	settings, found, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSettings):
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Ignoring unreadable bridge settings.",
			slog.String("error", err.Error()),
		)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("setup: load settings: %w", err)
	case !found:
		return false, nil
	}

	c.address = settings.Address
	c.credential = settings.Credential
	c.logger.LogAttrs(ctx, slog.LevelDebug, "Loaded settings",
		slog.String("address", c.address),
	)
	return true, nil
}

// Reset deletes the saved settings, forgets the session and runs Setup again.
// Use it when the bridge no longer accepts the credential.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	c.address = ""
	c.credential = ""
	return c.Setup(ctx)
}

// Discover locates the bridge and stores its address in the session.
func (c *Client) Discover(ctx context.Context) (string, error) {
	address, err := c.discoverer.Discover(ctx)
	if err != nil {
		return "", err
	}
	c.address = address
	return address, nil
}

// Pair obtains a credential from the bridge at the current address and stores
// it in the session. It does not save settings; Setup does.
func (c *Client) Pair(ctx context.Context) (string, error) {
	if c.address == "" {
		return "", ErrNotConnected
	}
	credential, err := c.pairer.Pair(ctx, c.address)
	if err != nil {
		return "", err
	}
	c.credential = credential
	return credential, nil
}
