// Package progress computes life progress from a birthday and expectancy.
package progress

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/life-progress/internal/model"
)

// DaysPerYear converts expectancy years to days.
const DaysPerYear = 365

const secondsPerDay = 24 * 60 * 60

var birthdayLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
}

// ParseBirthday parses a calendar date in one of the accepted layouts.
func ParseBirthday(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range birthdayLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (use YYYY-MM-DD)", ErrInvalidDate, value)
}

// ParseGender maps m/male/1 and f/female/0 to a Gender. Empty input is
// GenderUnspecified.
func ParseGender(value string) (model.Gender, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return model.GenderUnspecified, nil
	case "m", "male", "1":
		return model.GenderMale, nil
	case "f", "female", "0":
		return model.GenderFemale, nil
	default:
		return model.GenderUnspecified, fmt.Errorf("unknown gender %q (use male or female)", value)
	}
}

// Calculate splits a lifespan of years into spent and remaining days as of
// today. Both dates are compared as calendar days.
func Calculate(today, birthday time.Time, years float64) (model.ProgressInfo, error) {
	today = calendarDay(today)
	birthday = calendarDay(birthday)
	if birthday.After(today) {
		return model.ProgressInfo{}, fmt.Errorf("%w: %s is in the future", ErrInvalidDate, birthday.Format(time.DateOnly))
	}

	total := int(math.Round(years * DaysPerYear))
	spent := int((today.Unix() - birthday.Unix()) / secondsPerDay)
	info := model.ProgressInfo{
		Spent:      spent,
		Rest:       max(total-spent, 0),
		TotalDays:  total,
		Expectancy: years,
		Progress:   100,
	}
	if total > 0 {
		pct := int(math.Round(float64(spent) / float64(total) * 100))
		info.Progress = min(max(pct, 0), 100)
	}
	return info, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
