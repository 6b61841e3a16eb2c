package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Movie is the slice of an OMDb record we surface. The upstream API has
// shipped both capitalized and lowercase field names; encoding/json matches
// case-insensitively, which covers both.
type Movie struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	Director string `json:"director"`
	Genre    string `json:"genre"`
	Plot     string `json:"plot"`
	Poster   string `json:"poster"`
}

// payload wraps Movie with the OMDb response envelope. OMDb reports lookup
// failures as 200s with Response=False and an Error string.
type payload struct {
	Movie
	Response string `json:"response"`
	Error    string `json:"error"`
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://www.omdbapi.com"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch looks up one title by imdb id. Every call is a fresh round trip;
// nothing is cached and nothing is retried.
func (c *Client) Fetch(ctx context.Context, imdbID string) (Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Movie{}, err
	}
	q := req.URL.Query()
	q.Set("apikey", c.apiKey)
	q.Set("i", imdbID)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return Movie{}, fmt.Errorf("omdb %s: %w", imdbID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Movie{}, fmt.Errorf("omdb %s: status %s", imdbID, resp.Status)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Movie{}, fmt.Errorf("omdb %s: decode: %w", imdbID, err)
	}
	if strings.EqualFold(p.Response, "false") {
		return Movie{}, fmt.Errorf("omdb %s: %s", imdbID, p.Error)
	}
	return p.Movie, nil
}
