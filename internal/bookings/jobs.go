package bookings

import (
	"context"
	"time"

	"stagepass/pkg/logger"
)

// JobProcessor runs the hold sweeper: pending bookings whose payment window
// lapsed are expired and their inventory released.
type JobProcessor struct {
	service Service
	config  *JobConfig
	done    chan struct{}
	log     *logger.Logger
}

// JobConfig contains configuration for booking background jobs
type JobConfig struct {
	SweepInterval time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		SweepInterval: 1 * time.Minute,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	return &JobProcessor{
		service: service,
		config:  config,
		done:    make(chan struct{}),
		log:     logger.GetDefault(),
	}
}

// Start starts the sweeper
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.runSweeper(ctx)
	jp.log.Info("booking hold sweeper started", "interval", jp.config.SweepInterval.String())
}

// Stop stops the sweeper
func (jp *JobProcessor) Stop() {
	close(jp.done)
	jp.log.Info("booking hold sweeper stopped")
}

func (jp *JobProcessor) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweep(ctx context.Context) {
	if _, err := jp.service.ExpireStaleBookings(ctx, time.Now()); err != nil {
		jp.log.ErrorWithContext(ctx, "hold sweep failed", err, nil)
	}
}
