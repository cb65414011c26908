package progress

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/life-progress/internal/lifespan"
	"github.com/verte-zerg/life-progress/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testEngine(t *testing.T, today time.Time, rows ...lifespan.Row) *Engine {
	t.Helper()
	table, err := lifespan.NewTable(rows)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return NewEngine(table, WithClock(func() time.Time { return today }))
}

var (
	commonRow = lifespan.Row{Name: lifespan.CommonName, Info: model.CountryInfo{All: 80, Male: 78, Female: 82}}
	japanRow  = lifespan.Row{Name: "Japan", Info: model.CountryInfo{All: 84.3, Male: 81.5, Female: 86.9}}
	chinaRow  = lifespan.Row{Name: "China", Info: model.CountryInfo{All: 77.4, Male: 74.7, Female: 80.5}}
	chileRow  = lifespan.Row{Name: "Chile", Info: model.CountryInfo{All: 80.7, Male: 78.4, Female: 82.9}}
)

func TestCalculateScenario(t *testing.T) {
	info, err := Calculate(date(2024, 1, 1), date(2000, 1, 1), 80)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if info.Spent != 8766 {
		t.Fatalf("expected 8766 spent days, got %d", info.Spent)
	}
	if info.TotalDays != 29200 {
		t.Fatalf("expected 29200 total days, got %d", info.TotalDays)
	}
	if info.Rest != 29200-8766 {
		t.Fatalf("expected %d rest days, got %d", 29200-8766, info.Rest)
	}
	if info.Progress != 30 {
		t.Fatalf("expected 30%%, got %d%%", info.Progress)
	}
}

func TestCalculateIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, 1, 1, 23, 59, 0, 0, time.FixedZone("UTC+9", 9*3600))
	birthday := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	info, err := Calculate(today, birthday, 80)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if info.Spent != 8766 {
		t.Fatalf("expected 8766 spent days, got %d", info.Spent)
	}
}

func TestCalculateBounds(t *testing.T) {
	cases := []struct {
		name     string
		birthday time.Time
		years    float64
		spent    int
		rest     int
		progress int
	}{
		{name: "born today", birthday: date(2024, 6, 1), years: 80, spent: 0, rest: 29200, progress: 0},
		{name: "outlived expectancy", birthday: date(1900, 1, 1), years: 1, spent: 45442, rest: 0, progress: 100},
		{name: "born centuries ago", birthday: date(1700, 1, 1), years: 80, spent: 118490, rest: 0, progress: 100},
		{name: "zero expectancy", birthday: date(2024, 5, 1), years: 0, spent: 31, rest: 0, progress: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Calculate(date(2024, 6, 1), tc.birthday, tc.years)
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if info.Spent != tc.spent || info.Rest != tc.rest || info.Progress != tc.progress {
				t.Fatalf("unexpected result: %+v", info)
			}
		})
	}
}

func TestCalculateSpentPlusRestIsTotal(t *testing.T) {
	today := date(2024, 3, 15)
	for _, years := range []float64{40.5, 63.2, 77.4, 84.3} {
		for _, birthday := range []time.Time{date(1950, 2, 28), date(1984, 7, 4), date(2020, 2, 29)} {
			info, err := Calculate(today, birthday, years)
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if info.Progress < 0 || info.Progress > 100 {
				t.Fatalf("progress out of range: %+v", info)
			}
			if info.Spent <= info.TotalDays && info.Spent+info.Rest != info.TotalDays {
				t.Fatalf("spent+rest != total: %+v", info)
			}
		}
	}
}

func TestCalculateCountsDaysBeyondDurationRange(t *testing.T) {
	birthday, err := ParseBirthday("1700-01-01")
	if err != nil {
		t.Fatalf("ParseBirthday failed: %v", err)
	}
	info, err := Calculate(date(2024, 1, 1), birthday, 80)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if info.Spent != 118338 {
		t.Fatalf("expected 118338 spent days, got %d", info.Spent)
	}
}

func TestCalculateRejectsFutureBirthday(t *testing.T) {
	_, err := Calculate(date(2024, 1, 1), date(2024, 1, 2), 80)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseBirthday(t *testing.T) {
	for _, input := range []string{"2000-01-31", "2000/01/31", "2000.01.31", "20000131", " 2000-01-31 "} {
		got, err := ParseBirthday(input)
		if err != nil {
			t.Fatalf("ParseBirthday(%q) failed: %v", input, err)
		}
		if !got.Equal(date(2000, 1, 31)) {
			t.Fatalf("ParseBirthday(%q) = %v", input, got)
		}
	}
	for _, input := range []string{"", "31-01-2000", "2000-02-30", "yesterday"} {
		if _, err := ParseBirthday(input); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseBirthday(%q): expected ErrInvalidDate, got %v", input, err)
		}
	}
}

func TestParseGender(t *testing.T) {
	cases := map[string]model.Gender{
		"":       model.GenderUnspecified,
		"male":   model.GenderMale,
		"M":      model.GenderMale,
		"1":      model.GenderMale,
		"Female": model.GenderFemale,
		"f":      model.GenderFemale,
		"0":      model.GenderFemale,
	}
	for input, want := range cases {
		got, err := ParseGender(input)
		if err != nil || got != want {
			t.Fatalf("ParseGender(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseGender("x"); err == nil {
		t.Fatalf("expected error for unknown gender")
	}
}

func TestComputeDefaultsToCommon(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), commonRow, japanRow)
	info, err := e.Compute(date(2000, 1, 1), model.GenderUnspecified, "")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if info.Country != lifespan.CommonName || info.TotalDays != 29200 || info.Progress != 30 {
		t.Fatalf("unexpected result: %+v", info)
	}
}

func TestComputeSelectsGenderFigure(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), commonRow, japanRow)
	for gender, want := range map[model.Gender]float64{
		model.GenderUnspecified: 84.3,
		model.GenderMale:        81.5,
		model.GenderFemale:      86.9,
	} {
		info, err := e.Compute(date(2000, 1, 1), gender, "Japan")
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if info.Expectancy != want || info.TotalDays != int(math.Round(want*DaysPerYear)) {
			t.Fatalf("gender %v: unexpected result %+v", gender, info)
		}
	}
}

func TestComputeFallsBackToFuzzyMatch(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), commonRow, chileRow, chinaRow, japanRow)
	info, err := e.Compute(date(2000, 1, 1), model.GenderFemale, "chin")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if info.Country != "China" || info.Expectancy != 80.5 {
		t.Fatalf("expected China female figure, got %+v", info)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), commonRow, chileRow, chinaRow, japanRow)
	first, err := e.Compute(date(1990, 5, 17), model.GenderMale, "jpn")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	second, err := e.Compute(date(1990, 5, 17), model.GenderMale, "jpn")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestComputeUnknownCountry(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), commonRow, chileRow, chinaRow)
	_, err := e.Compute(date(2000, 1, 1), model.GenderUnspecified, "zzznonexistent12345")
	if !errors.Is(err, ErrUnknownCountry) {
		t.Fatalf("expected ErrUnknownCountry, got %v", err)
	}
	var unknown *UnknownCountryError
	if !errors.As(err, &unknown) || unknown.Query != "zzznonexistent12345" || unknown.Closest != "" {
		t.Fatalf("expected query in error, got %#v", err)
	}
}

func TestResolveRejectsWeakFuzzyMatch(t *testing.T) {
	far := "A" + "xxxxxxxxxxxxxxxxxxxx" + "d"
	e := testEngine(t, date(2024, 1, 1), commonRow, lifespan.Row{Name: far})
	_, _, err := e.Resolve("ad")
	var unknown *UnknownCountryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCountryError, got %v", err)
	}
	if unknown.Closest != far {
		t.Fatalf("expected closest candidate %q, got %q", far, unknown.Closest)
	}

	near := lifespan.Row{Name: "Abcd"}
	e = testEngine(t, date(2024, 1, 1), commonRow, near)
	name, _, err := e.Resolve("ad")
	if err != nil || name != "Abcd" {
		t.Fatalf("expected Abcd to resolve, got %q, %v", name, err)
	}
}

func TestResolveEmptyTable(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1))
	if _, _, err := e.Resolve("China"); !errors.Is(err, ErrEmptyCandidateSet) {
		t.Fatalf("expected ErrEmptyCandidateSet, got %v", err)
	}
	if results := e.Search("China"); len(results) != 0 {
		t.Fatalf("expected empty search result, got %+v", results)
	}
}

func TestResolveWithoutCommonEntry(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), japanRow)
	_, _, err := e.Resolve("")
	if !errors.Is(err, ErrUnknownCountry) {
		t.Fatalf("expected ErrUnknownCountry, got %v", err)
	}
	var unknown *UnknownCountryError
	if !errors.As(err, &unknown) || unknown.Query != "" || unknown.Closest != "" {
		t.Fatalf("expected empty query in error, got %#v", err)
	}
	if !strings.Contains(err.Error(), "no country given") {
		t.Fatalf("expected missing default entry in message, got %q", err.Error())
	}
}

func TestSearchAndLookup(t *testing.T) {
	e := testEngine(t, date(2024, 1, 1), commonRow, chileRow, chinaRow, japanRow)
	if got := e.Search(""); len(got) != 4 {
		t.Fatalf("expected every entry for empty query, got %d", len(got))
	}
	if got := e.Search("zzznonexistent12345"); len(got) != 0 {
		t.Fatalf("expected no entries, got %+v", got)
	}
	if info, ok := e.Lookup("Japan"); !ok || info != japanRow.Info {
		t.Fatalf("unexpected lookup: %+v %v", info, ok)
	}
	if _, ok := e.Lookup("japan"); ok {
		t.Fatalf("expected exact lookup to be case-sensitive")
	}
}
