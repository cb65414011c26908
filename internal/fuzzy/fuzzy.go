// Package fuzzy ranks candidate strings against a subsequence query.
//
// Every query rune must appear in the candidate in order, compared after
// unicode.ToLower. The best alignment is chosen by dynamic programming over
// these weights:
//
//	matched rune                      +16
//	rune right after previous match   +12
//	match at offset 0                 +12
//	match at a word start             +8
//	skipped rune between matches      -3
//	rune before the first match       -1
//	candidate equals query (no case)  +100
//
// Scores are clamped at zero. Indices are byte offsets into the candidate.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/life-progress/internal/model"
)

const (
	ScoreMatch       = 16
	bonusConsecutive = 12
	bonusFirstRune   = 12
	bonusBoundary    = 8
	penaltyGap       = 3
	penaltyLeading   = 1
	bonusExact       = 100
)

// Match returns a result for every candidate that contains the query as a
// subsequence, in candidate order. An empty query matches every candidate
// with score 0 and no indices.
func Match(query string, candidates []string) []model.MatchResult {
	results := make([]model.MatchResult, 0, len(candidates))
	q := lowerRunes(query)
	for _, candidate := range candidates {
		if len(q) == 0 {
			results = append(results, model.MatchResult{Name: candidate})
			continue
		}
		score, indices, ok := align(q, candidate)
		if !ok {
			continue
		}
		if strings.EqualFold(query, candidate) {
			score += bonusExact
		}
		results = append(results, model.MatchResult{
			Name:    candidate,
			Score:   max(score, 0),
			Indices: indices,
		})
	}
	return results
}

// Score matches a single candidate. ok is false when query is not a
// subsequence of candidate.
func Score(query, candidate string) (score int, indices []int, ok bool) {
	results := Match(query, []string{candidate})
	if len(results) == 0 {
		return 0, nil, false
	}
	return results[0].Score, results[0].Indices, true
}

// Best returns the highest-scoring result. Equal scores go to the
// lexicographically smaller name.
func Best(results []model.MatchResult) (model.MatchResult, bool) {
	if len(results) == 0 {
		return model.MatchResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score || (r.Score == best.Score && r.Name < best.Name) {
			best = r
		}
	}
	return best, true
}

// Rank returns a copy of results ordered by descending score, then name.
func Rank(results []model.MatchResult) []model.MatchResult {
	ranked := append([]model.MatchResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

type cell struct {
	score int
	prev  int
	set   bool
}

// align finds the best placement of q in candidate. dp[i][j] holds the best
// score with q[i] placed on candidate rune j.
func align(q []rune, candidate string) (int, []int, bool) {
	runes := make([]rune, 0, len(candidate))
	offsets := make([]int, 0, len(candidate))
	for off, r := range candidate {
		runes = append(runes, unicode.ToLower(r))
		offsets = append(offsets, off)
	}
	n, m := len(q), len(runes)
	if n > m || !isSubsequence(q, runes) {
		return 0, nil, false
	}

	dp := make([][]cell, n)
	for i := range dp {
		dp[i] = make([]cell, m)
	}
	for j := 0; j < m; j++ {
		if runes[j] != q[0] {
			continue
		}
		dp[0][j] = cell{
			score: runeBonus(runes, j) - j*penaltyLeading,
			prev:  -1,
			set:   true,
		}
	}
	for i := 1; i < n; i++ {
		for j := i; j < m; j++ {
			if runes[j] != q[i] {
				continue
			}
			for k := i - 1; k < j; k++ {
				if !dp[i-1][k].set {
					continue
				}
				s := dp[i-1][k].score + runeBonus(runes, j)
				if k == j-1 {
					s += bonusConsecutive
				} else {
					s -= (j - k - 1) * penaltyGap
				}
				if !dp[i][j].set || s > dp[i][j].score {
					dp[i][j] = cell{score: s, prev: k, set: true}
				}
			}
		}
	}

	end := -1
	for j := n - 1; j < m; j++ {
		if dp[n-1][j].set && (end == -1 || dp[n-1][j].score > dp[n-1][end].score) {
			end = j
		}
	}
	if end == -1 {
		return 0, nil, false
	}

	indices := make([]int, n)
	for i, j := n-1, end; i >= 0; i-- {
		indices[i] = offsets[j]
		j = dp[i][j].prev
	}
	return dp[n-1][end].score, indices, true
}

func runeBonus(runes []rune, j int) int {
	score := ScoreMatch
	switch {
	case j == 0:
		score += bonusFirstRune
	case isBoundary(runes[j-1]):
		score += bonusBoundary
	}
	return score
}

func isBoundary(r rune) bool {
	switch r {
	case ' ', '-', '(', '\'', ',', '.', '/':
		return true
	}
	return unicode.IsSpace(r)
}

func isSubsequence(q, runes []rune) bool {
	i := 0
	for _, r := range runes {
		if i < len(q) && r == q[i] {
			i++
		}
	}
	return i == len(q)
}

func lowerRunes(s string) []rune {
	out := make([]rune, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}
