package ctxsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MutexTestSuite struct {
	suite.Suite
	m *Mutex
}

func (s *MutexTestSuite) SetupTest() {
	s.m = NewMutex()
}

func (s *MutexTestSuite) TestLockUnlock() {
	s.m.Lock()
	s.False(s.m.TryLock())
	s.m.Unlock()
	s.True(s.m.TryLock())
	s.m.Unlock()
}

func (s *MutexTestSuite) TestLockWithContext() {
	s.NoError(s.m.LockWithContext(context.Background()))
	s.m.Unlock()
}

func (s *MutexTestSuite) TestLockWithCancelledContext() {
	s.m.Lock()
	defer s.m.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.m.LockWithContext(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)

	// The failed acquisition must not have consumed the slot.
	s.False(s.m.TryLock())
}

func (s *MutexTestSuite) TestContention() {
	s.m.Lock()
	acquired := make(chan struct{})
	go func() {
		s.m.Lock()
		close(acquired)
		s.m.Unlock()
	}()

	select {
	case <-acquired:
		s.FailNow("lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	s.m.Unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		s.FailNow("lock never handed over")
	}
}

func (s *MutexTestSuite) TestUnlockOfUnlocked() {
	s.Panics(func() { s.m.Unlock() })
}

func TestMutexTestSuite(t *testing.T) {
	suite.Run(t, new(MutexTestSuite))
}
