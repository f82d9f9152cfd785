// Package sessiontest provides scripted session and dialer doubles for
// pool, manager and orchestrator tests.
package sessiontest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
)

// FakeSession is a scripted Session. Outputs maps a command to its canned
// text; Errs maps a command to a scripted failure. Unknown commands return
// a generic banner so collectors always get some text.
type FakeSession struct {
	mu       sync.Mutex
	Host     string
	Outputs  map[string]string
	Errs     map[string]error
	Alive    bool
	Closed   bool
	RunCalls []string
	// DieAfter, when positive, flips the liveness probe to false once that
	// many commands have run. Simulates a transport dying mid-collection.
	DieAfter int
}

// NewFakeSession creates a live fake session for a host
func NewFakeSession(host string) *FakeSession {
	return &FakeSession{
		Host:    host,
		Outputs: make(map[string]string),
		Errs:    make(map[string]error),
		Alive:   true,
	}
}

func (f *FakeSession) Run(ctx context.Context, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RunCalls = append(f.RunCalls, command)
	if f.DieAfter > 0 && len(f.RunCalls) >= f.DieAfter {
		f.Alive = false
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Closed {
		return "", fmt.Errorf("session to %s is closed", f.Host)
	}
	if err, ok := f.Errs[command]; ok {
		return "", err
	}
	if out, ok := f.Outputs[command]; ok {
		return out, nil
	}
	return fmt.Sprintf("%s output from %s", command, f.Host), nil
}

func (f *FakeSession) IsAlive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Alive && !f.Closed
}

func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *FakeSession) Hostname() string {
	return f.Host
}

// SetAlive flips the liveness probe result
func (f *FakeSession) SetAlive(alive bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Alive = alive
}

// Ran returns the commands executed so far, in order
func (f *FakeSession) Ran() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.RunCalls))
	copy(out, f.RunCalls)
	return out
}

// FakeDialer is a scripted Dialer. FailuresFor schedules the next N Dial
// calls for a hostname to fail before one succeeds, which is exactly the
// shape retry tests need.
type FakeDialer struct {
	mu        sync.Mutex
	failures  map[string]int
	alwaysErr map[string]error
	DialCount map[string]int
	Sessions  map[string]*FakeSession
	// OnDial, when set, customizes the session handed out for a hostname
	OnDial func(s *FakeSession)
}

// NewFakeDialer creates a dialer that succeeds for every host by default
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{
		failures:  make(map[string]int),
		alwaysErr: make(map[string]error),
		DialCount: make(map[string]int),
		Sessions:  make(map[string]*FakeSession),
	}
}

// FailuresFor makes the next n Dial calls for host fail transiently
func (d *FakeDialer) FailuresFor(host string, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[host] = n
}

// AlwaysFail makes every Dial call for host fail with err
func (d *FakeDialer) AlwaysFail(host string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alwaysErr[host] = err
}

func (d *FakeDialer) Dial(ctx context.Context, cfg domain.ConnectionConfig) (session.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.DialCount[cfg.Hostname]++

	if err, ok := d.alwaysErr[cfg.Hostname]; ok {
		return nil, err
	}
	if n := d.failures[cfg.Hostname]; n > 0 {
		d.failures[cfg.Hostname] = n - 1
		return nil, fmt.Errorf("scripted dial failure for %s", cfg.Hostname)
	}

	s := NewFakeSession(cfg.Hostname)
	if d.OnDial != nil {
		d.OnDial(s)
	}
	d.Sessions[cfg.Hostname] = s
	return s, nil
}

// Dials returns how many times host was dialed
func (d *FakeDialer) Dials(host string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.DialCount[host]
}
