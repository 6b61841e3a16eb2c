package types

import "regexp"

var imdbIDPattern = regexp.MustCompile(`[a-z]{2}\d+`)

// ExtractImdbID pulls the first imdb-shaped id (two lowercase letters
// followed by digits) out of free-form user input. Returns ErrBadID when
// the input contains no such substring.
func ExtractImdbID(raw string) (string, error) {
	id := imdbIDPattern.FindString(raw)
	if id == "" {
		return "", ErrBadID
	}
	return id, nil
}
