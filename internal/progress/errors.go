package progress

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/life-progress/internal/lifespan"
)

var (
	// ErrInvalidDate reports an unparseable or future birthday.
	ErrInvalidDate = errors.New("invalid birthday")
	// ErrUnknownCountry reports a country query that resolves to nothing.
	ErrUnknownCountry = errors.New("unknown country")
	// ErrEmptyCandidateSet reports a statistics table without entries.
	ErrEmptyCandidateSet = errors.New("statistics table is empty")
)

// UnknownCountryError carries the query that failed to resolve. An empty
// Query means the default entry is missing.
type UnknownCountryError struct {
	Query string
	// Closest is the best fuzzy candidate that fell below the threshold, if any.
	Closest string
}

func (e *UnknownCountryError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%v: no country given and no %q entry in the statistics table", ErrUnknownCountry, lifespan.CommonName)
	}
	if e.Closest != "" {
		return fmt.Sprintf("%v: %q (closest match %q is too weak)", ErrUnknownCountry, e.Query, e.Closest)
	}
	return fmt.Sprintf("%v: %q", ErrUnknownCountry, e.Query)
}

func (e *UnknownCountryError) Unwrap() error {
	return ErrUnknownCountry
}
