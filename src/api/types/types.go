package types

import (
	"errors"
	"time"
)

// Movie proposals
type Movie struct {
	ImdbID     string     `gorm:"primaryKey;size:16"`
	ProposedAt time.Time  `gorm:"not null"`
	ProposedBy string     `gorm:"size:128;not null"`
	Watched    *time.Time // nil while the proposal is open
	Vetos      int32      `gorm:"not null;default:0"`
}

var (
	ErrBadID     = errors.New("no imdb id in input")
	ErrDuplicate = errors.New("movie already proposed")
	ErrNotFound  = errors.New("movie not found")
)
