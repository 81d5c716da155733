package services

import (
	"context"
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/platform/obs"
	"donation-matching-service/internal/ports"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Snapshot is an immutable view of the organizations available for
// matching. Every organization in it has a location.
type Snapshot struct {
	Organizations []*domain.Organization
	LoadedAt      time.Time
}

// Size is the number of organizations in the snapshot; 0 for nil.
func (s *Snapshot) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Organizations)
}

// SnapshotStore owns the current snapshot. Reads are lock-free; a reload
// builds a new snapshot and swaps it in whole, so an in-flight match keeps
// using the snapshot it started with.
type SnapshotStore struct {
	source ports.OrganizationSource
	logger logrus.FieldLogger
	now    func() time.Time

	current atomic.Pointer[Snapshot]
	reload  sync.Mutex
}

func NewSnapshotStore(source ports.OrganizationSource, logger logrus.FieldLogger) *SnapshotStore {
	return &SnapshotStore{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the loaded snapshot, or nil before the first successful
// load.
func (s *SnapshotStore) Current() *Snapshot {
	return s.current.Load()
}

// Reload reads every organization from the source and replaces the
// snapshot. Organizations without coordinates are left out. On error, or
// when the source has no located organizations while a non-empty snapshot
// is loaded, the previous snapshot stays in place.
func (s *SnapshotStore) Reload(ctx context.Context) (snap *Snapshot, err error) {
	defer obs.Time(ctx, s.logger, "snapshot.Reload")(&err)

	s.reload.Lock()
	defer s.reload.Unlock()

	orgs, err := s.source.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload snapshot: %w", err)
	}

	located := make([]*domain.Organization, 0, len(orgs))
	for _, o := range orgs {
		if o == nil || o.Location == nil {
			continue
		}
		located = append(located, o)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"loaded":  len(located),
		"skipped": len(orgs) - len(located),
		"req_id":  obs.RequestID(ctx),
	})
	if len(located) == 0 {
		if prev := s.current.Load(); prev.Size() > 0 {
			entry.WithField("kept", prev.Size()).Warn("no organizations with coordinates found, keeping previous snapshot")
			return nil, fmt.Errorf("reload snapshot: %w", ErrNoOrganizations)
		}
		entry.Warn("no organizations with coordinates loaded")
	} else {
		entry.Info("organization snapshot loaded")
	}

	snap = &Snapshot{Organizations: located, LoadedAt: s.now().UTC()}
	s.current.Store(snap)

	return snap, nil
}
