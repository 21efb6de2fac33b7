package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/junepark678/ebsi-csat/pkg/logger"
)

// Sweeper drops sessions idle for longer than ttl and reports how many.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	idleTTL   time.Duration
}

func New(sweeper Sweeper, interval, idleTTL time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		interval:  interval,
		idleTTL:   idleTTL,
	}
}

func (s *Scheduler) Start() error {
	log := logger.Log

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		if n := s.sweeper.Sweep(s.idleTTL); n > 0 {
			log.Info().Int("removed", n).Msg("idle sessions swept")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Info().Dur("interval", s.interval).Dur("idle_ttl", s.idleTTL).Msg("session sweeper started")

	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	logger.Log.Info().Msg("session sweeper stopped")
}
