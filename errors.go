package hue

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the hue client.
// All errors are defined here for easy discovery and consistent organization.
var (
	// Bootstrap errors
	ErrBridgeNotFound = errors.New("hue: bridge not found on LAN")
	ErrPairingTimeout = errors.New("hue: link button was not pressed before pairing timed out")
	ErrNotConnected   = errors.New("hue: bridge address and credential are required")

	// Settings errors
	ErrCorruptSettings    = errors.New("hue: settings are corrupt")
	ErrIncompleteSettings = errors.New("hue: settings need both address and credential")

	// State payload validation errors
	ErrEmptyState        = errors.New("hue: state payload cannot be empty")
	ErrUnknownStateField = errors.New("hue: unknown state field")
	ErrInvalidStateValue = errors.New("hue: invalid state value")

	// Configuration errors
	ErrInvalidConfig = errors.New("hue: invalid configuration")
)

// Bridge error types, as reported in the "type" field of a bridge error object.
const (
	ErrorTypeUnauthorizedUser      = 1
	ErrorTypeInvalidJSON           = 2
	ErrorTypeResourceNotAvailable  = 3
	ErrorTypeMethodNotAvailable    = 4
	ErrorTypeMissingParameters     = 5
	ErrorTypeParameterNotAvailable = 6
	ErrorTypeInvalidValue          = 7
	ErrorTypeParameterReadOnly     = 8
	ErrorTypeLinkButtonNotPressed  = 101
	ErrorTypeDeviceOff             = 201
)

// APIError represents a non-2xx HTTP response from the bridge.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("hue: API error %d: %s", e.StatusCode, e.Message)
}

// BridgeError is an error object returned by the bridge inside a 200 response,
// e.g. [{"error":{"type":1,"address":"/","description":"unauthorized user"}}].
type BridgeError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	return fmt.Sprintf("hue: bridge error %d at %s: %s", e.Type, e.Address, e.Description)
}

// IsUnauthorized returns true if the error indicates the credential was rejected.
func IsUnauthorized(err error) bool {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Type == ErrorTypeUnauthorizedUser
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Type == ErrorTypeResourceNotAvailable
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsLinkButtonNotPressed returns true if the bridge refused pairing because
// the link button has not been pressed.
func IsLinkButtonNotPressed(err error) bool {
	var bridgeErr *BridgeError
	return errors.As(err, &bridgeErr) && bridgeErr.Type == ErrorTypeLinkButtonNotPressed
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
