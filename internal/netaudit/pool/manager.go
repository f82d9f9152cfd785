package pool

import (
	"context"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
	"github.com/ehsaniara/netaudit/pkg/config"
	"github.com/ehsaniara/netaudit/pkg/logger"
)

// TimeoutPolicy picks a per-command timeout. Callers supply it so heavy
// commands (full table dumps) can get 2-3x the default without the manager
// knowing anything about vendor CLIs.
type TimeoutPolicy func(command string) time.Duration

// Manager is the façade collectors talk to: scoped acquisition plus
// single and batch command execution with normalized results.
type Manager struct {
	pool           *Pool
	defaultTimeout time.Duration
	logger         *logger.Logger
}

// NewManager creates a manager over an existing pool
func NewManager(p *Pool, cfg *config.Config) *Manager {
	return &Manager{
		pool:           p,
		defaultTimeout: cfg.CommandTimeout,
		logger:         logger.WithField("component", "connection-manager"),
	}
}

// WithConnection acquires a session for cfg and runs fn with it. The pool
// keeps ownership of the session on every exit path, including a panic in
// fn, so accounting can never be left half-done.
func (m *Manager) WithConnection(ctx context.Context, cfg domain.ConnectionConfig, fn func(session.Session) error) error {
	s, err := m.pool.Acquire(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic inside connection scope",
				"host", cfg.Hostname, "panic", r)
			panic(r)
		}
	}()

	return fn(s)
}

// ExecuteCommand runs one command and always returns a result: transport
// and execution failures land in the result, never in an error. Command
// failures are recoverable and must not kill a run.
func (m *Manager) ExecuteCommand(ctx context.Context, s session.Session, command string, timeout time.Duration) domain.CommandResult {
	if timeout <= 0 {
		timeout = m.defaultTimeout
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	output, err := s.Run(cmdCtx, command)
	elapsed := time.Since(start)

	result := domain.CommandResult{
		Command:  command,
		Duration: elapsed,
	}
	if err != nil {
		result.Error = err.Error()
		m.logger.Warn("command failed",
			"host", s.Hostname(),
			"command", command,
			"duration", elapsed,
			"error", err)
		return result
	}

	result.Output = output
	result.Success = true
	return result
}

// ExecuteBatch runs commands in order and returns one result per command,
// same order as the input. A failure on one command never aborts the rest.
func (m *Manager) ExecuteBatch(ctx context.Context, s session.Session, commands []string, policy TimeoutPolicy) []domain.CommandResult {
	results := make([]domain.CommandResult, 0, len(commands))

	for _, command := range commands {
		timeout := m.defaultTimeout
		if policy != nil {
			timeout = policy(command)
		}
		results = append(results, m.ExecuteCommand(ctx, s, command, timeout))
	}

	return results
}

// Pool exposes the underlying pool for stats and cleanup
func (m *Manager) Pool() *Pool {
	return m.pool
}

// DefaultTimeout returns the manager's fallback per-command timeout
func (m *Manager) DefaultTimeout() time.Duration {
	return m.defaultTimeout
}
