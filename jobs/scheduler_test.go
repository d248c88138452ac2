package jobs

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs  int32
	delay time.Duration
	err   error
}

func (j *countingJob) Run() error {
	atomic.AddInt32(&j.runs, 1)
	time.Sleep(j.delay)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.AddJob("@every 1s", job))
	assert.Error(t, s.AddJob("not a schedule", job))
	assert.Equal(t, 1, s.Entries())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	assert.EqualError(t, s.RunNow(job), "boom")
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{delay: 4 * time.Second}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	time.Sleep(3200 * time.Millisecond)
	s.Stop()

	// every tick after the first lands while that run is still busy
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
}
