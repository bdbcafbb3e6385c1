package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/logging"
)

type countingRegenerator struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRegenerator) Regenerate(context.Context) *models.Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return &models.Dataset{UpperBound: 2024, Seed: uint64(r.calls)}
}

func (r *countingRegenerator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingPublisher struct {
	err       error
	published []*models.Dataset
}

func (p *recordingPublisher) Publish(_ context.Context, ds *models.Dataset) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, ds)
	return "gen", nil
}

func TestRunOnce_RegeneratesAndPublishes(t *testing.T) {
	regen := &countingRegenerator{}
	pub := &recordingPublisher{}
	s := New(regen, pub, time.Hour, logging.NewNopLogger())

	s.RunOnce()
	s.RunOnce()

	assert.Equal(t, 2, regen.count())
	assert.Equal(t, 2, s.Runs())
	require.Len(t, pub.published, 2)
	assert.Equal(t, uint64(2), pub.published[1].Seed)
}

func TestRunOnce_PublishFailureDoesNotPanic(t *testing.T) {
	regen := &countingRegenerator{}
	s := New(regen, &recordingPublisher{err: errors.New("down")}, time.Hour, logging.NewNopLogger())

	assert.NotPanics(t, s.RunOnce)
	assert.Equal(t, 1, regen.count())
}

func TestRunOnce_WithoutPublisher(t *testing.T) {
	regen := &countingRegenerator{}
	s := New(regen, nil, time.Hour, logging.NewNopLogger())

	s.RunOnce()
	assert.Equal(t, 1, regen.count())
}

func TestStart_DisabledInterval(t *testing.T) {
	regen := &countingRegenerator{}
	s := New(regen, nil, 0, logging.NewNopLogger())

	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, regen.count())
}

func TestStart_RunsOnInterval(t *testing.T) {
	regen := &countingRegenerator{}
	s := New(regen, nil, time.Second, logging.NewNopLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return regen.count() >= 1 }, 5*time.Second, 50*time.Millisecond)
}
