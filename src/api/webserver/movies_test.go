package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/filmnight/movienight/src/api/data"
	"github.com/filmnight/movienight/src/api/listings"
	"github.com/filmnight/movienight/src/api/omdb"
	"github.com/filmnight/movienight/src/api/types"
)

type fakeFetcher struct {
	fail map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, imdbID string) (omdb.Movie, error) {
	if f.fail[imdbID] {
		return omdb.Movie{}, errors.New("omdb down")
	}
	return omdb.Movie{Title: "title of " + imdbID, Year: "1999"}, nil
}

func newTestServer(t *testing.T) (*gin.Engine, data.Store, *fakeFetcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(
		sqlite.Open("file:"+filepath.Join(t.TempDir(), "movies.db")+"?_busy_timeout=5000"),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.Movie{}))

	fetcher := &fakeFetcher{fail: map[string]bool{}}
	g := gin.New()
	g.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")))
	attachRoutes(g, db, nil, fetcher)
	return g, data.NewStore(db), fetcher
}

func postForm(t *testing.T, g *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, g *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAddMovie(t *testing.T) {
	g, s, _ := newTestServer(t)

	w := postForm(t, g, "/movies", url.Values{
		"imdb_id":     {"please add tt0133093 tonight"},
		"proposed_by": {"Ana"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var ls []listings.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ls))
	require.Len(t, ls, 1)
	assert.Equal(t, "tt0133093", ls[0].DBInfo.ImdbID)
	assert.Equal(t, "Ana", ls[0].DBInfo.ProposedBy)
	assert.Nil(t, ls[0].DBInfo.Watched)
	assert.Equal(t, "title of tt0133093", ls[0].APIInfo.Title)

	movies, err := s.List(context.Background(), data.All)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "tt0133093", movies[0].ImdbID)
}

func TestAddMovieBadInput(t *testing.T) {
	g, _, _ := newTestServer(t)

	// no id anywhere in the input
	w := postForm(t, g, "/movies", url.Values{"imdb_id": {"ABC"}, "proposed_by": {"Ana"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing proposer
	w = postForm(t, g, "/movies", url.Values{"imdb_id": {"tt0133093"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// proposer that is nothing but markup
	w = postForm(t, g, "/movies", url.Values{"imdb_id": {"tt0133093"}, "proposed_by": {"<b></b>"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddMovieDuplicate(t *testing.T) {
	g, _, _ := newTestServer(t)

	form := url.Values{"imdb_id": {"tt0133093"}, "proposed_by": {"Ana"}}
	require.Equal(t, http.StatusOK, postForm(t, g, "/movies", form).Code)
	assert.Equal(t, http.StatusConflict, postForm(t, g, "/movies", form).Code)
}

func TestAddMovieStripsMarkup(t *testing.T) {
	g, s, _ := newTestServer(t)

	w := postForm(t, g, "/movies", url.Values{
		"imdb_id":     {"tt0133093"},
		"proposed_by": {"<b>Ana</b>"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	movies, err := s.List(context.Background(), data.All)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Ana", movies[0].ProposedBy)
}

func TestAddMovieUpstreamFailureKeepsRow(t *testing.T) {
	g, s, fetcher := newTestServer(t)
	fetcher.fail["tt0133093"] = true

	w := postForm(t, g, "/movies", url.Values{"imdb_id": {"tt0133093"}, "proposed_by": {"Ana"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// the insert happened before the join failed
	movies, err := s.List(context.Background(), data.All)
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestListMovies(t *testing.T) {
	g, s, _ := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"tt0111161", "tt0133093"} {
		_, err := s.Insert(ctx, id, "Ana")
		require.NoError(t, err)
	}
	require.NoError(t, s.MarkWatched(ctx, "tt0111161"))

	w := get(t, g, "/movies")
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t,
		[]string{"tt0111161", "tt0133093"},
		strings.Split(w.Body.String(), "\n"))

	w = get(t, g, "/movies?watched=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tt0111161", w.Body.String())

	w = get(t, g, "/movies?watched=false")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tt0133093", w.Body.String())

	w = get(t, g, "/movies?watched=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchMovie(t *testing.T) {
	g, s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "tt0133093", "Ana")
	require.NoError(t, err)

	w := postForm(t, g, "/movies/watch", url.Values{"imdb_id": {"tt0133093"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Done", w.Body.String())

	open, err := s.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	// idempotent from the client's point of view
	w = postForm(t, g, "/movies/watch", url.Values{"imdb_id": {"tt0133093"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWatchMovieUnknown(t *testing.T) {
	g, _, _ := newTestServer(t)
	w := postForm(t, g, "/movies/watch", url.Values{"imdb_id": {"tt9999999"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVetoMovie(t *testing.T) {
	g, s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "tt0133093", "Ana")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		w := postForm(t, g, "/movies/veto", url.Values{"imdb_id": {"tt0133093"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Done", w.Body.String())
	}

	movies, err := s.List(ctx, data.All)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, int32(3), movies[0].Vetos)
}

func TestVetoMovieUnknown(t *testing.T) {
	g, _, _ := newTestServer(t)
	w := postForm(t, g, "/movies/veto", url.Values{"imdb_id": {"tt9999999"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexPage(t *testing.T) {
	g, s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "tt0133093", "Ana")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "tt0111161", "Bob")
	require.NoError(t, err)
	require.NoError(t, s.MarkWatched(ctx, "tt0111161"))

	w := get(t, g, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	// only open proposals are on the page
	assert.Contains(t, body, "title of tt0133093")
	assert.Contains(t, body, "Ana")
	assert.NotContains(t, body, "tt0111161")
}

func TestIndexPageUpstreamFailure(t *testing.T) {
	g, s, fetcher := newTestServer(t)

	_, err := s.Insert(context.Background(), "tt0133093", "Ana")
	require.NoError(t, err)
	fetcher.fail["tt0133093"] = true

	w := get(t, g, "/")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
