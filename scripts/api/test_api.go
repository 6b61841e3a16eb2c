// Minimal end-to-end smoke test for the Movie Night API. Run it against a
// live instance; it proposes a movie, vetoes it, lists it, and marks it
// watched. Re-runs tolerate the proposal already existing.
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var (
	baseURL = getenv("API_URL", "http://localhost:8080")
	imdbID  = getenv("TEST_IMDB_ID", "tt0133093")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	addMovie()
	veto()
	checkListed("false")
	watch()
	checkListed("true")
	fmt.Println("✓ all endpoints passed")
}

func addMovie() {
	resp, err := http.PostForm(baseURL+"/movies", url.Values{
		"imdb_id":     {imdbID},
		"proposed_by": {"smoke-test"},
	})
	if err != nil {
		log.Fatalf("POST /movies: %v", err)
	}
	defer resp.Body.Close()
	body := readBody(resp)
	switch resp.StatusCode {
	case http.StatusOK:
		if !strings.Contains(body, imdbID) {
			log.Fatalf("add: %s missing from listing response", imdbID)
		}
	case http.StatusConflict:
		// already proposed on a previous run
	default:
		log.Fatalf("add: status %d: %s", resp.StatusCode, body)
	}
}

func veto() {
	if body := doForm("/movies/veto", url.Values{"imdb_id": {imdbID}}, http.StatusOK); body != "Done" {
		log.Fatalf("veto: unexpected body %q", body)
	}
}

func watch() {
	if body := doForm("/movies/watch", url.Values{"imdb_id": {imdbID}}, http.StatusOK); body != "Done" {
		log.Fatalf("watch: unexpected body %q", body)
	}
}

func checkListed(watched string) {
	resp, err := http.Get(baseURL + "/movies?watched=" + watched)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	body := readBody(resp)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("list: status %d: %s", resp.StatusCode, body)
	}
	for _, id := range strings.Split(body, "\n") {
		if id == imdbID {
			return
		}
	}
	log.Fatalf("list watched=%s: %s not present", watched, imdbID)
}

func doForm(path string, form url.Values, wantStatus int) string {
	resp, err := http.PostForm(baseURL+path, form)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body := readBody(resp)
	if resp.StatusCode != wantStatus {
		log.Fatalf("POST %s: status %d, want %d: %s", path, resp.StatusCode, wantStatus, body)
	}
	return body
}

func readBody(resp *http.Response) string {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read body: %v", err)
	}
	return string(b)
}
