// Package status resolves reservation status codes from the reference table.
// Status IDs are deployment data, not constants: the table may be reseeded or
// translated, so the registry matches names by keyword and caches the result.
package status

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// keyword lists matched case-insensitively as substrings against status names.
var (
	pendingKeywords   = []string{"pending", "wait"}
	approvedKeywords  = []string{"approv", "confirm"}
	cancelledKeywords = []string{"cancel"}
	completedKeywords = []string{"complet", "finish", "closed"}
)

// Registry loads the reservation status table once per TTL and exposes the
// resolved codes. All read paths degrade to the fallback constants so a
// missing or unreadable table never blocks booking.
type Registry struct {
	repo ports.StatusRepository
	ttl  time.Duration
	log  *zap.Logger

	mu       sync.Mutex
	cached   *domain.StatusSet
	cachedAt time.Time
}

func NewRegistry(repo ports.StatusRepository, ttl time.Duration, log *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Registry{repo: repo, ttl: ttl, log: log}
}

// Resolve returns the current status set, reloading the reference table when
// the cache entry is older than the TTL. A load failure falls back to the
// last cached value, or to an empty set when nothing was ever loaded.
func (r *Registry) Resolve(ctx context.Context) domain.StatusSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && time.Since(r.cachedAt) < r.ttl {
		return *r.cached
	}

	rows, err := r.repo.ListReservationStatuses(ctx)
	if err != nil {
		r.log.Warn("status table unavailable, using cached or fallback codes", zap.Error(err))
		if r.cached != nil {
			return *r.cached
		}
		return domain.StatusSet{}
	}

	set := resolveSet(rows)
	r.cached = &set
	r.cachedAt = time.Now()
	return set
}

// Invalidate drops the cached set so the next Resolve reloads the table.
// Called after admin edits to the reference data.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

// ActiveIDs returns the codes counted as occupying a slot. Empty resolution
// falls back to the conventional pending and approved codes.
func (r *Registry) ActiveIDs(ctx context.Context) []int {
	if ids := r.Resolve(ctx).ActiveIDs(); len(ids) > 0 {
		return ids
	}
	return []int{domain.FallbackStatusPending, domain.FallbackStatusApproved}
}

// DefaultID is the status for a newly created reservation.
func (r *Registry) DefaultID(ctx context.Context) int {
	return r.Resolve(ctx).DefaultID()
}

func (r *Registry) CancelledID(ctx context.Context) int {
	if set := r.Resolve(ctx); set.Cancelled != nil {
		return *set.Cancelled
	}
	return domain.FallbackStatusCancelled
}

func (r *Registry) CompletedID(ctx context.Context) int {
	if set := r.Resolve(ctx); set.Completed != nil {
		return *set.Completed
	}
	return domain.FallbackStatusCompleted
}

// Validate loads the table and fails when any of the four slots cannot be
// resolved. Run at startup so misconfigured reference data surfaces
// immediately instead of as silent fallback behavior.
func (r *Registry) Validate(ctx context.Context) error {
	rows, err := r.repo.ListReservationStatuses(ctx)
	if err != nil {
		return fmt.Errorf("load reservation statuses: %w", err)
	}
	set := resolveSet(rows)
	if missing := set.Missing(); len(missing) > 0 {
		return fmt.Errorf("reservation status table resolves no row for: %s", strings.Join(missing, ", "))
	}

	r.mu.Lock()
	r.cached = &set
	r.cachedAt = time.Now()
	r.mu.Unlock()
	return nil
}

func resolveSet(rows []domain.ReservationStatus) domain.StatusSet {
	var set domain.StatusSet
	for _, row := range rows {
		name := strings.ToLower(row.Name)
		id := row.ID
		switch {
		case set.Pending == nil && matchesAny(name, pendingKeywords):
			v := id
			set.Pending = &v
		case set.Approved == nil && matchesAny(name, approvedKeywords):
			v := id
			set.Approved = &v
		case set.Cancelled == nil && matchesAny(name, cancelledKeywords):
			v := id
			set.Cancelled = &v
		case set.Completed == nil && matchesAny(name, completedKeywords):
			v := id
			set.Completed = &v
		}
	}
	return set
}

func matchesAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
