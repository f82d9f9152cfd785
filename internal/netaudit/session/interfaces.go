// Package session defines the narrow device-CLI capability the pool and
// collectors depend on, plus the SSH implementation of it. Nothing above
// this package knows which transport is in use.
package session

import (
	"context"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// Session is one live CLI session to one device. A CLI session is inherently
// single-request-at-a-time; callers must not Run concurrently on one session.
type Session interface {
	// Run executes a single show-command and returns its raw text output.
	// The context bounds the whole exchange.
	Run(ctx context.Context, command string) (string, error)

	// IsAlive probes whether the underlying transport is still usable
	IsAlive() bool

	// Close tears the session down. Only the pool calls this.
	Close() error

	// Hostname identifies the device this session is connected to
	Hostname() string
}

// Dialer creates sessions. It is the pluggable creation strategy the pool
// depends on, which is also what makes retry behavior testable with
// scripted doubles.
type Dialer interface {
	Dial(ctx context.Context, cfg domain.ConnectionConfig) (Session, error)
}
