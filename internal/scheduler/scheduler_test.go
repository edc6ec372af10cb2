package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/aristath/screener/internal/testing"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run(_ context.Context) error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	return "counting"
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.AddJob("@every 1s", job))
	assert.Equal(t, 1, s.Entries())

	err := s.AddJob("not a schedule", job)
	assert.Error(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("job failures are logged only")}
	require.NoError(t, s.AddJob("* * * * * *", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestCheckHistoryDatabaseJob(t *testing.T) {
	db := testingpkg.NewTestDB(t, "history")
	job := NewCheckHistoryDatabaseJob(db, zerolog.Nop())

	assert.Equal(t, "check_history_database", job.Name())
	assert.NoError(t, job.Run(context.Background()))
}

func TestCheckHistoryDatabaseJob_NoDatabase(t *testing.T) {
	job := NewCheckHistoryDatabaseJob(nil, zerolog.Nop())
	assert.NoError(t, job.Run(context.Background()))
}
