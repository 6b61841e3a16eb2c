package webserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"

	"github.com/filmnight/movienight/src/api/data"
	"github.com/filmnight/movienight/src/api/listings"
	"github.com/filmnight/movienight/src/api/types"
)

type Movies struct {
	store     data.Store
	rdb       *redis.Client
	fetcher   listings.Fetcher
	sanitizer *bluemonday.Policy
}

func NewMovies(store data.Store, rdb *redis.Client, fetcher listings.Fetcher) Movies {
	return Movies{
		store:     store,
		rdb:       rdb,
		fetcher:   fetcher,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Index renders the HTML page of open proposals with live metadata.
func (m Movies) Index(c *gin.Context) {
	movies, err := m.store.ListOpen(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	ls, err := listings.Build(c.Request.Context(), m.fetcher, movies)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"err": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "index.html.tmpl", gin.H{"Listings": ls})
}

// List returns the matching imdb ids, one per line. The watched query
// parameter narrows to watched (true) or open (false) proposals.
func (m Movies) List(c *gin.Context) {
	filter := data.All
	switch c.Query("watched") {
	case "":
	case "true":
		filter = data.WatchedOnly
	case "false":
		filter = data.OpenOnly
	default:
		c.JSON(http.StatusBadRequest, gin.H{"err": "watched must be true or false"})
		return
	}

	movies, err := m.store.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	ids := make([]string, len(movies))
	for i, mv := range movies {
		ids[i] = mv.ImdbID
	}
	c.String(http.StatusOK, strings.Join(ids, "\n"))
}

// Add stores a new proposal and responds with the full listing set. The
// insert stands on its own: if the OMDb join afterwards fails, the proposal
// is persisted regardless and the client gets a 502.
func (m Movies) Add(c *gin.Context) {
	var req struct {
		ImdbID     string `form:"imdb_id" binding:"required"`
		ProposedBy string `form:"proposed_by" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	imdbID, err := types.ExtractImdbID(req.ImdbID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	proposedBy := strings.TrimSpace(m.sanitizer.Sanitize(req.ProposedBy))
	if proposedBy == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "proposed_by is empty after sanitization"})
		return
	}

	if _, err := m.store.Insert(c.Request.Context(), imdbID, proposedBy); err != nil {
		if errors.Is(err, types.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"err": "movie already proposed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	m.publish(c, "add", imdbID)

	movies, err := m.store.List(c.Request.Context(), data.All)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	ls, err := listings.Build(c.Request.Context(), m.fetcher, movies)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ls)
}

// Watch marks a proposal watched. Watching twice is fine; an unknown id is
// a 404.
func (m Movies) Watch(c *gin.Context) {
	imdbID, ok := m.bindImdbID(c)
	if !ok {
		return
	}
	if err := m.store.MarkWatched(c.Request.Context(), imdbID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "movie not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	m.publish(c, "watch", imdbID)
	c.String(http.StatusOK, "Done")
}

// Veto records one veto against a proposal. An unknown id is a 404.
func (m Movies) Veto(c *gin.Context) {
	imdbID, ok := m.bindImdbID(c)
	if !ok {
		return
	}
	if err := m.store.AddVeto(c.Request.Context(), imdbID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "movie not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	m.publish(c, "veto", imdbID)
	c.String(http.StatusOK, "Done")
}

func (m Movies) bindImdbID(c *gin.Context) (string, bool) {
	var req struct {
		ImdbID string `form:"imdb_id" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return "", false
	}
	imdbID, err := types.ExtractImdbID(req.ImdbID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return "", false
	}
	return imdbID, true
}

// publish never fails the request; a dead event stream is a log line.
func (m Movies) publish(c *gin.Context, action, imdbID string) {
	if err := data.PublishEvent(c.Request.Context(), m.rdb, action, imdbID); err != nil {
		log.Printf("publish %s %s: %v", action, imdbID, err)
	}
}
