package data

import (
	"context"
	"errors"
	"time"

	"github.com/filmnight/movienight/src/api/types"
	"gorm.io/gorm"
)

// Filter selects which proposals List returns.
type Filter int

const (
	All Filter = iota
	OpenOnly
	WatchedOnly
)

// Store owns all reads and writes of movie proposals. Every call goes to
// the database; nothing is cached in process.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store { return Store{db: db} }

// Insert creates a new proposal. ProposedAt is set here, server-side.
// Returns types.ErrDuplicate when the id has already been proposed.
func (s Store) Insert(ctx context.Context, imdbID, proposedBy string) (types.Movie, error) {
	m := types.Movie{
		ImdbID:     imdbID,
		ProposedAt: time.Now().UTC(),
		ProposedBy: proposedBy,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.Movie{}, types.ErrDuplicate
		}
		return types.Movie{}, err
	}
	return m, nil
}

func (s Store) ListOpen(ctx context.Context) ([]types.Movie, error) {
	return s.List(ctx, OpenOnly)
}

// List returns proposals matching the filter, oldest first, imdb id as
// tiebreaker so the order is deterministic.
func (s Store) List(ctx context.Context, f Filter) ([]types.Movie, error) {
	q := s.db.WithContext(ctx).Order("proposed_at, imdb_id")
	switch f {
	case OpenOnly:
		q = q.Where("watched IS NULL")
	case WatchedOnly:
		q = q.Where("watched IS NOT NULL")
	}
	var movies []types.Movie
	if err := q.Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// MarkWatched stamps the proposal watched. Watching an already-watched
// movie is a no-op that still succeeds; the timestamp is never overwritten.
// Returns types.ErrNotFound for an unknown id.
func (s Store) MarkWatched(ctx context.Context, imdbID string) error {
	res := s.db.WithContext(ctx).Model(&types.Movie{}).
		Where("imdb_id = ? AND watched IS NULL", imdbID).
		Update("watched", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&types.Movie{}).
			Where("imdb_id = ?", imdbID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
	}
	return nil
}

// AddVeto bumps the veto counter with a single in-place UPDATE so
// concurrent vetoes cannot lose increments. Returns types.ErrNotFound for
// an unknown id.
func (s Store) AddVeto(ctx context.Context, imdbID string) error {
	res := s.db.WithContext(ctx).Model(&types.Movie{}).
		Where("imdb_id = ?", imdbID).
		UpdateColumn("vetos", gorm.Expr("vetos + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}
