package smbus

import (
	"context"

	"github.com/pkg/errors"
)

type sessionState int

const (
	stateUninitialized sessionState = iota
	stateActive
	stateDone
)

func (s sessionState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateActive:
		return "active"
	case stateDone:
		return "done"
	}
	return "unknown"
}

var (
	// ErrSupportNotChecked is returned for a transaction issued before CheckSupported.
	ErrSupportNotChecked = errors.New("controller support has not been checked")
	// ErrSessionClosed is returned for a transaction after the session is done.
	ErrSessionClosed = errors.New("session already finished")
)

// A Session is one invocation's use of a Controller: a single support check followed by at most
// one transaction. If the check fails the session is done and no transaction reaches the
// controller.
type Session struct {
	controller Controller
	state      sessionState
}

// NewSession starts a session on controller.
func NewSession(controller Controller) *Session {
	return &Session{controller: controller}
}

// CheckSupported queries the controller once. Later calls return false without asking again.
func (s *Session) CheckSupported(ctx context.Context) bool {
	if s.state != stateUninitialized {
		return false
	}
	if !s.controller.IsSupported(ctx) {
		s.state = stateDone
		return false
	}
	s.state = stateActive
	return true
}

// Describe returns the controller description.
func (s *Session) Describe(ctx context.Context) string {
	return s.controller.Describe(ctx)
}

// Done reports whether the session accepts no further transactions.
func (s *Session) Done() bool {
	return s.state == stateDone
}

func (s *Session) begin() error {
	switch s.state {
	case stateUninitialized:
		return ErrSupportNotChecked
	case stateDone:
		return ErrSessionClosed
	case stateActive:
	}
	s.state = stateDone
	return nil
}

// ReadByte runs the session's transaction as a byte read.
func (s *Session) ReadByte(ctx context.Context, addr Address, off Offset) (byte, error) {
	if err := s.begin(); err != nil {
		return 0, err
	}
	return s.controller.ReadByte(ctx, addr, off)
}

// ReadRange runs the session's transaction as a ranged read.
func (s *Session) ReadRange(ctx context.Context, addr Address, off Offset, size int) ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	return s.controller.ReadRange(ctx, addr, off, size)
}

// ReadBlock runs the session's transaction as a block read.
func (s *Session) ReadBlock(ctx context.Context, addr Address, off Offset, size Size) ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	return s.controller.ReadBlock(ctx, addr, off, size)
}

// WriteByte runs the session's transaction as a byte write.
func (s *Session) WriteByte(ctx context.Context, addr Address, off Offset, value byte) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.controller.WriteByte(ctx, addr, off, value)
}

// WriteBlock runs the session's transaction as a block write.
func (s *Session) WriteBlock(ctx context.Context, addr Address, off Offset, data []byte) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.controller.WriteBlock(ctx, addr, off, data)
}
