// Package scheduler runs the periodic housekeeping of the server on a
// gocron scheduler: idle chat eviction, refresh token cleanup and removal
// of old synthesized audio.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Job is one recurring task.  Run receives a context that is cancelled on
// shutdown.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Start registers jobs and starts the scheduler.  A job never overlaps
// with itself; a slow run pushes the next one back.  Callers must call
// Shutdown on the returned scheduler.
func Start(ctx context.Context, jobs ...Job) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if j.Every <= 0 || j.Run == nil {
			continue
		}
		j := j
		_, err := s.NewJob(
			gocron.DurationJob(j.Every),
			gocron.NewTask(func() {
				if err := j.Run(ctx); err != nil {
					log.Printf("scheduler: %s: %v", j.Name, err)
				}
			}),
			gocron.WithName(j.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", j.Name, err)
		}
	}
	s.Start()
	log.Printf("scheduler: started %d jobs", len(s.Jobs()))
	return s, nil
}
