package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// EmbeddingBackfiller fills missing interest embeddings in batches.
type EmbeddingBackfiller interface {
	BackfillEmbeddings(ctx context.Context) (int, error)
}

type Scheduler struct {
	sched gocron.Scheduler
}

// StartScheduler registers the periodic jobs and starts running them.
func StartScheduler(backfill EmbeddingBackfiller, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := backfill.BackfillEmbeddings(context.Background())
			if err != nil {
				logrus.WithField("job", "embedding_backfill").Warnf("backfill failed: %v", err)
				return
			}
			if n > 0 {
				logrus.WithField("job", "embedding_backfill").Infof("embedded %d users", n)
			}
		}),
		gocron.WithName("embedding_backfill"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("register embedding backfill: %w", err)
	}

	sched.Start()
	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
