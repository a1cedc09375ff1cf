package hue

import (
	"context"
	"encoding/json"
)

// BridgeClient defines the operations of a bootstrapped Hue client.
// Client implements this interface, enabling mocking for tests.
type BridgeClient interface {
	// ============================================================================
	// Session
	// ============================================================================

	Setup(ctx context.Context) error
	Reset(ctx context.Context) error
	Address() string
	Credential() string
	Connected() bool

	// ============================================================================
	// Raw Resource Access
	// ============================================================================

	URL(path string) string
	Fetch(ctx context.Context, path string) (json.RawMessage, error)
	Update(ctx context.Context, path string, payload any) (json.RawMessage, error)

	// ============================================================================
	// Light Operations
	// ============================================================================

	LightIDs(ctx context.Context) ([]int, error)
	Light(ctx context.Context, id int) (Attributes, error)
	Lights(ctx context.Context) (map[int]Attributes, error)
	LightNames(ctx context.Context) (map[int]string, error)
	SetLight(ctx context.Context, id int, state State) (json.RawMessage, error)

	// ============================================================================
	// Group Operations
	// ============================================================================

	GroupIDs(ctx context.Context) ([]int, error)
	Group(ctx context.Context, id int) (Attributes, error)
	Groups(ctx context.Context) (map[int]Attributes, error)
	GroupNames(ctx context.Context) (map[int]string, error)
	SetGroup(ctx context.Context, id int, state State) (json.RawMessage, error)
}

var _ BridgeClient = (*Client)(nil)
