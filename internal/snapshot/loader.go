package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/pkg/logger"
)

// Reader is the read side of the snapshot repository
type Reader interface {
	LatestDate(ctx context.Context) (time.Time, error)
	GetSnapshot(ctx context.Context, date time.Time) (*contracts.Snapshot, error)
}

// Loader resolves the snapshot handed to screening sessions: Redis first,
// then the file store, then the database
// ⭐ SSOT: 세션용 스냅샷 로딩은 여기서만
type Loader struct {
	store  *Store
	repo   Reader
	cache  *Cache
	logger *logger.Logger
}

// NewLoader creates a loader over the file store
func NewLoader(store *Store, log *logger.Logger) *Loader {
	return &Loader{
		store:  store,
		logger: log.WithField("module", "snapshot"),
	}
}

// WithRepository adds the database as a fallback source
func (l *Loader) WithRepository(repo Reader) *Loader {
	l.repo = repo
	return l
}

// WithCache puts a Redis cache in front of the sources
func (l *Loader) WithCache(cache *Cache) *Loader {
	l.cache = cache
	return l
}

// Latest returns the most recent validated snapshot
func (l *Loader) Latest(ctx context.Context) (*contracts.Snapshot, error) {
	if l.cache == nil {
		return l.latest(ctx)
	}

	snap, err := l.cache.Latest(ctx, l.latest)
	if err == nil {
		if verr := snap.Validate(); verr == nil {
			return snap, nil
		}
		l.logger.Warn("Cached snapshot failed validation, reloading")
		_ = l.cache.Invalidate(ctx)
	} else if errors.Is(err, ErrNoSnapshot) {
		return nil, err
	} else {
		l.logger.WithError(err).Warn("Snapshot cache unavailable")
	}
	return l.latest(ctx)
}

// Load returns the snapshot for one date
func (l *Loader) Load(ctx context.Context, date time.Time) (*contracts.Snapshot, error) {
	snap, err := l.store.Load(date)
	if errors.Is(err, ErrNoSnapshot) && l.repo != nil {
		return l.repo.GetSnapshot(ctx, date)
	}
	return snap, err
}

// Summary returns the headline summary of a snapshot, cached when Redis is
// configured
func (l *Loader) Summary(ctx context.Context, snap *contracts.Snapshot) contracts.Summary {
	if l.cache != nil {
		summary, err := l.cache.Summary(ctx, snap)
		if err == nil {
			return summary
		}
		l.logger.WithError(err).Warn("Summary cache unavailable")
	}
	return snap.Summarize()
}

func (l *Loader) latest(ctx context.Context) (*contracts.Snapshot, error) {
	snap, err := l.store.Latest()
	if err == nil {
		l.logger.WithFields(map[string]interface{}{
			"date":    snap.Date.Format(dateLayout),
			"records": snap.Count(),
		}).Debug("Snapshot loaded from files")
		return snap, nil
	}
	if !errors.Is(err, ErrNoSnapshot) || l.repo == nil {
		return nil, err
	}

	date, err := l.repo.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	return l.repo.GetSnapshot(ctx, date)
}
