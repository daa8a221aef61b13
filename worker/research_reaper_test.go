package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReleaser struct {
	mu    sync.Mutex
	calls []time.Duration
	n     int64
	err   error
}

func (f *fakeReleaser) FailStale(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, olderThan)
	return f.n, f.err
}

func (f *fakeReleaser) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestResearchReaper(t *testing.T) {
	t.Run("Success - Sweeps on every tick until cancelled", func(t *testing.T) {
		releaser := &fakeReleaser{n: 2}
		reaper := NewResearchReaper(releaser, 5*time.Millisecond, 10*time.Minute, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			reaper.Start(ctx)
			close(done)
		}()

		require.Eventually(t, func() bool { return releaser.count() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("reaper did not stop after cancel")
		}
		assert.Equal(t, 10*time.Minute, releaser.calls[0])
	})

	t.Run("Error - Failures are logged and the loop continues", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		releaser := &fakeReleaser{err: errors.New("db down")}
		reaper := NewResearchReaper(releaser, time.Hour, time.Minute, logrus.NewEntry(logger))

		reaper.sweep(context.Background())
		reaper.sweep(context.Background())

		assert.Equal(t, 2, releaser.count())
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})
}
