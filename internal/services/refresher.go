package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const refreshTimeout = time.Minute

// Refresher reloads a SnapshotStore on a cron schedule.
type Refresher struct {
	store  *SnapshotStore
	logger logrus.FieldLogger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	started bool
}

func NewRefresher(store *SnapshotStore, logger logrus.FieldLogger) *Refresher {
	return &Refresher{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Schedule registers the reload job, replacing any earlier schedule.
// spec accepts standard five-field expressions and descriptors such as
// "@every 15m".
func (r *Refresher) Schedule(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryID != 0 {
		r.cron.Remove(r.entryID)
		r.entryID = 0
	}

	id, err := r.cron.AddFunc(spec, r.refresh)
	if err != nil {
		return fmt.Errorf("schedule snapshot refresh %q: %w", spec, err)
	}
	r.entryID = id

	return nil
}

// Start runs the scheduler in its own goroutine.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		r.cron.Start()
		r.started = true
	}
}

// Stop halts the scheduler and waits for a running reload to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		<-r.cron.Stop().Done()
		r.started = false
	}
}

// Next reports when the reload job runs next; zero when unscheduled or
// before Start.
func (r *Refresher) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryID == 0 {
		return time.Time{}
	}
	return r.cron.Entry(r.entryID).Next
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if _, err := r.store.Reload(ctx); err != nil {
		r.logger.WithError(err).Error("scheduled snapshot refresh failed, keeping previous snapshot")
	}
}
