package async_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lhecker/threading/async"
)

const (
	shortWaitTimeout = 50 * time.Millisecond
	longWaitTimeout  = 5 * time.Second
)

func requirePending(t *testing.T, a *async.Acquisition) {
	t.Helper()

	select {
	case <-a.Done():
		require.Fail(t, "acquisition completed unexpectedly")
	case <-time.After(shortWaitTimeout):
	}
	require.False(t, a.IsCompleted())
}

func requireCompleted(t *testing.T, a *async.Acquisition) async.Releaser {
	t.Helper()

	select {
	case <-a.Done():
	case <-time.After(longWaitTimeout):
		require.Fail(t, "acquisition did not complete in time")
	}
	require.True(t, a.IsCompleted())

	r, ok := a.WaitTimeout(0)
	require.True(t, ok)
	require.NotNil(t, r)
	return r
}

func requireSignaled(t *testing.T, c <-chan struct{}) {
	t.Helper()

	select {
	case <-c:
	case <-time.After(longWaitTimeout):
		require.Fail(t, "channel was not closed in time")
	}
}

func requireNotSignaled(t *testing.T, c <-chan struct{}) {
	t.Helper()

	select {
	case <-c:
		require.Fail(t, "channel closed unexpectedly")
	case <-time.After(shortWaitTimeout):
	}
}
