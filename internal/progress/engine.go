package progress

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/life-progress/internal/fuzzy"
	"github.com/verte-zerg/life-progress/internal/lifespan"
	"github.com/verte-zerg/life-progress/internal/model"
)

// MinScorePerRune is the fuzzy score each query rune must average for a
// fuzzy match to resolve a country. It is half of fuzzy.ScoreMatch, so gaps
// and a late start may cost at most half of the raw match score.
const MinScorePerRune = fuzzy.ScoreMatch / 2

// Engine answers searches and progress queries over one statistics table.
// The table is never mutated, so an Engine is safe for concurrent use.
type Engine struct {
	table  *lifespan.Table
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine returns an Engine over table.
func NewEngine(table *lifespan.Table, opts ...Option) *Engine {
	e := &Engine{
		table:  table,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search fuzzy-matches query against all country names, in table order.
func (e *Engine) Search(query string) []model.MatchResult {
	return fuzzy.Match(query, e.table.Names())
}

// Lookup returns the entry stored under the exact name.
func (e *Engine) Lookup(name string) (model.CountryInfo, bool) {
	return e.table.Lookup(name)
}

// Resolve turns a country name or fuzzy query into a table entry. An empty
// query resolves to the world-average entry.
func (e *Engine) Resolve(query string) (string, model.CountryInfo, error) {
	if e.table.Len() == 0 {
		return "", model.CountryInfo{}, ErrEmptyCandidateSet
	}
	if query == "" {
		if info, ok := e.table.Lookup(lifespan.CommonName); ok {
			return lifespan.CommonName, info, nil
		}
		return "", model.CountryInfo{}, &UnknownCountryError{}
	}
	if info, ok := e.table.Lookup(query); ok {
		return query, info, nil
	}

	best, ok := fuzzy.Best(e.Search(query))
	if !ok {
		return "", model.CountryInfo{}, &UnknownCountryError{Query: query}
	}
	threshold := MinScorePerRune * utf8.RuneCountInString(query)
	if best.Score < threshold {
		e.logger.Debug("fuzzy match below threshold", "query", query, "candidate", best.Name, "score", best.Score, "threshold", threshold)
		return "", model.CountryInfo{}, &UnknownCountryError{Query: query, Closest: best.Name}
	}
	e.logger.Debug("resolved country", "query", query, "country", best.Name, "score", best.Score)
	info, _ := e.table.Lookup(best.Name)
	return best.Name, info, nil
}

// Compute resolves the country query and calculates progress for birthday.
func (e *Engine) Compute(birthday time.Time, gender model.Gender, query string) (model.ProgressInfo, error) {
	name, info, err := e.Resolve(query)
	if err != nil {
		return model.ProgressInfo{}, err
	}
	result, err := Calculate(e.now(), birthday, info.Expectancy(gender))
	if err != nil {
		return model.ProgressInfo{}, err
	}
	result.Country = name
	return result, nil
}
