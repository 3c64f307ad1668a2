// Package worker runs work outside the request that triggered it.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Launcher starts detached tasks. Callers never wait on a task; Wait exists
// for shutdown and tests.
type Launcher struct {
	wg sync.WaitGroup
}

func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch runs task on its own goroutine with a background context. A panic is
// logged and swallowed; tasks own their own failure reporting.
func (l *Launcher) Launch(name string, task func(ctx context.Context)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("task", name).Errorf("task panicked: %v\n%s", r, debug.Stack())
			}
		}()
		task(context.Background())
	}()
}

// Wait blocks until every launched task returns or ctx is done.
func (l *Launcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for tasks: %w", ctx.Err())
	}
}
