// Package listings joins stored proposals with live OMDb metadata into the
// per-request view served as JSON and rendered on the index page.
package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/filmnight/movienight/src/api/omdb"
	"github.com/filmnight/movienight/src/api/types"
	"golang.org/x/sync/errgroup"
)

// fetchLimit caps in-flight OMDb calls per build.
const fetchLimit = 8

// Fetcher is what Build needs from the catalog client.
type Fetcher interface {
	Fetch(ctx context.Context, imdbID string) (omdb.Movie, error)
}

// DBInfo is the stored side of a listing. Timestamps travel as Unix epoch
// seconds; Watched stays null while the proposal is open.
type DBInfo struct {
	ImdbID     string `json:"imdb_id"`
	ProposedAt int64  `json:"proposed_at"`
	ProposedBy string `json:"proposed_by"`
	Watched    *int64 `json:"watched"`
	Vetos      int32  `json:"vetos"`
}

// ProposedDate renders the proposal day for the HTML page.
func (d DBInfo) ProposedDate() string {
	return time.Unix(d.ProposedAt, 0).UTC().Format("2006-01-02")
}

type Listing struct {
	DBInfo  DBInfo     `json:"db_info"`
	APIInfo omdb.Movie `json:"api_info"`
}

func fromMovie(m types.Movie) DBInfo {
	d := DBInfo{
		ImdbID:     m.ImdbID,
		ProposedAt: m.ProposedAt.Unix(),
		ProposedBy: m.ProposedBy,
		Vetos:      m.Vetos,
	}
	if m.Watched != nil {
		w := m.Watched.Unix()
		d.Watched = &w
	}
	return d
}

// Build fetches metadata for every proposal and pairs it with the stored
// fields. Fetches run concurrently up to fetchLimit but the result keeps
// the input order. All-or-nothing: the first fetch error cancels the rest
// and fails the whole build.
func Build(ctx context.Context, f Fetcher, movies []types.Movie) ([]Listing, error) {
	out := make([]Listing, len(movies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, m := range movies {
		i, m := i, m
		g.Go(func() error {
			info, err := f.Fetch(ctx, m.ImdbID)
			if err != nil {
				return fmt.Errorf("build listing: %w", err)
			}
			out[i] = Listing{DBInfo: fromMovie(m), APIInfo: info}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
