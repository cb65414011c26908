// Package model defines shared data structures.
package model

import "time"

// CountryInfo holds life expectancy figures in years.
type CountryInfo struct {
	All    float64 `json:"all" yaml:"all"`
	Male   float64 `json:"male" yaml:"male"`
	Female float64 `json:"female" yaml:"female"`
}

// Gender selects which expectancy figure applies.
type Gender int

const (
	// GenderUnspecified uses the overall figure.
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

// String returns the lowercase gender name, or "" when unspecified.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return ""
	}
}

// Expectancy returns the figure that applies to gender g.
func (c CountryInfo) Expectancy(g Gender) float64 {
	switch g {
	case GenderMale:
		return c.Male
	case GenderFemale:
		return c.Female
	default:
		return c.All
	}
}

// MatchResult is a fuzzy search hit. Indices are byte offsets into Name.
type MatchResult struct {
	Name    string
	Score   int
	Indices []int
}

// ProgressInfo summarizes life progress in days.
type ProgressInfo struct {
	Spent      int     `json:"spent" yaml:"spent"`
	Rest       int     `json:"rest" yaml:"rest"`
	Progress   int     `json:"progress" yaml:"progress"`
	TotalDays  int     `json:"total_days" yaml:"total_days"`
	Expectancy float64 `json:"expectancy" yaml:"expectancy"`
	Country    string  `json:"country" yaml:"country"`
}

// Profile holds the user's defaults for a progress computation.
type Profile struct {
	Birthday time.Time
	Gender   Gender
	Nation   string
}
