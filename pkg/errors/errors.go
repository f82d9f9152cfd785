// Package errors provides standardized error handling for the netaudit system.
// It implements structured error types with proper wrapping and classification
// following Go 1.20+ error handling best practices.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Pool-related errors
	ErrPoolExhausted = errors.New("connection pool exhausted")
	ErrPoolClosed    = errors.New("connection pool is closed")

	// Session-related errors
	ErrSessionClosed   = errors.New("session is closed")
	ErrSessionNotAlive = errors.New("session is not alive")

	// Collection-related errors
	ErrUnknownLayer    = errors.New("unknown collection layer")
	ErrUnknownPlatform = errors.New("unknown device platform")
	ErrEmptyInventory  = errors.New("inventory contains no devices")

	// System-related errors
	ErrTimeout       = errors.New("operation timed out")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConnectionError represents a failure to establish or keep a device connection.
// Attempts records how many creation attempts were made before giving up.
type ConnectionError struct {
	Host     string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("device %s: connection failed after %d attempts: %v", e.Host, e.Attempts, e.Err)
	}
	return fmt.Sprintf("device %s: connection failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CommandError represents a failure while executing a single command on a device
type CommandError struct {
	Host    string
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("device %s: command %q: %v", e.Host, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Component string
	Field     string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s.%s: %v", e.Component, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InventoryError represents an error loading or validating the device inventory
type InventoryError struct {
	Path string
	Line int
	Err  error
}

func (e *InventoryError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("inventory %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("inventory %s: %v", e.Path, e.Err)
}

func (e *InventoryError) Unwrap() error {
	return e.Err
}

// NewConnectionError wraps a creation failure with device context
func NewConnectionError(host string, attempts int, err error) *ConnectionError {
	return &ConnectionError{Host: host, Attempts: attempts, Err: err}
}

// NewCommandError wraps a command failure with device context
func NewCommandError(host, command string, err error) *CommandError {
	return &CommandError{Host: host, Command: command, Err: err}
}

// IsPoolExhausted reports whether err is the pool's admission-control refusal
func IsPoolExhausted(err error) bool {
	return errors.Is(err, ErrPoolExhausted)
}

// IsDeviceUnreachable reports whether err is a terminal per-device connection
// failure (creation retries exhausted). Pool exhaustion is not unreachability:
// the device may be fine, the pool is just full.
func IsDeviceUnreachable(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsRetryable reports whether err is worth another attempt with the same
// inputs. Context cancellation and pool exhaustion are not: the first means
// the caller gave up, the second is admission control.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrPoolExhausted) || errors.Is(err, ErrPoolClosed) {
		return false
	}
	var cfgErr *ConfigError
	return !errors.As(err, &cfgErr)
}

// Is, As and Unwrap re-exports so callers don't need to import both this
// package and the stdlib errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func New(text string) error {
	return errors.New(text)
}
