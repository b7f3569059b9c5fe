package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meowv/blog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	purged  int64
	err     error
}

func (p *fakePurger) PurgeDeletedArticles(_ context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.purged, p.err
}

func (p *fakePurger) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cutoffs)
}

func TestCleanupRunNowUsesRetention(t *testing.T) {
	purger := &fakePurger{purged: 3}
	svc := NewCleanupService(purger, config.CleanupConfig{Enabled: true, RetentionDays: 30}, discardLogger())
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	result, err := svc.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.PurgedArticles)
	require.Len(t, purger.cutoffs, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), purger.cutoffs[0])
}

func TestCleanupRunNowMinimumRetention(t *testing.T) {
	purger := &fakePurger{}
	svc := NewCleanupService(purger, config.CleanupConfig{Enabled: true, RetentionDays: 0}, discardLogger())
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -1), purger.cutoffs[0])
}

func TestCleanupRunDisabled(t *testing.T) {
	purger := &fakePurger{}
	svc := NewCleanupService(purger, config.CleanupConfig{Enabled: false}, discardLogger())

	// Returns immediately without a cancelled context.
	assert.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, 0, purger.calls())
}

func TestCleanupRunLoop(t *testing.T) {
	purger := &fakePurger{err: errors.New("db gone")}
	svc := NewCleanupService(purger, config.CleanupConfig{Enabled: true, Interval: time.Hour, RetentionDays: 7}, discardLogger())
	svc.firstRun = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return purger.calls() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
