// Package jobs runs the periodic work of the game server.
package jobs

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one periodic task of the game server, such as the alert tick.
type Job interface {
	Run() error
	Name() string
}

// Scheduler fires the game's periodic tasks on cron specs. A tick that
// arrives while the previous run of the same job is busy is skipped.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New returns a stopped scheduler whose specs accept a seconds field.
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&l))),
		),
		log: l,
	}
}

// Start begins firing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop halts the ticks and waits for in-flight runs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under schedule, e.g. "@every 3s" for the alert tick.
// A failed run is logged and the next tick runs as usual.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		}
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow runs job once on the caller's goroutine.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
