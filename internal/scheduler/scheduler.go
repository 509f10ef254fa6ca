package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
)

// Default intervals for background jobs. The keep-alive cadence matches what
// free-tier backend hosts need to avoid spinning down.
const (
	DefaultKeepAliveMinutes    = 5
	DefaultOutboxReplayMinutes = 10
)

// Pinger keeps the remote backend warm
type Pinger interface {
	Ping(ctx context.Context) error
}

// Replayer drains the persisted sync outbox
type Replayer interface {
	ReplayOutbox(ctx context.Context) error
}

// Scheduler manages the application's background jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	pinger    Pinger
	replayer  Replayer
}

// New creates a new scheduler instance. Pinger may be nil when running
// against the local store only.
func New(pinger Pinger, replayer Replayer) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pinger:    pinger,
		replayer:  replayer,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	if s.pinger != nil {
		s.scheduler.Every(keepAliveMinutes()).Minutes().Do(s.pingBackend)
	}
	if s.replayer != nil {
		s.scheduler.Every(DefaultOutboxReplayMinutes).Minutes().Do(s.replayOutbox)
	}
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) pingBackend() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		log.Printf("Backend keep-alive ping failed: %v", err)
	}
}

func (s *Scheduler) replayOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.replayer.ReplayOutbox(ctx); err != nil {
		log.Printf("Outbox replay failed: %v", err)
	}
}

func keepAliveMinutes() int {
	if v := os.Getenv("KEEP_ALIVE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			return minutes
		}
	}
	return DefaultKeepAliveMinutes
}
