package locations

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Period is an export time window. End is passed to the platform's date
// filter, which treats it as exclusive.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) String() string {
	return p.Start.Format(dateLayout) + ".." + p.End.Format(dateLayout)
}

// Season returns the growing-season window of a year, April 1st through
// September 30th.
func Season(year int) Period {
	return Period{
		Start: time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.September, 30, 0, 0, 0, 0, time.UTC),
	}
}

// Seasons expands years into their growing-season windows.
func Seasons(years []int) []Period {
	periods := make([]Period, 0, len(years))
	for _, year := range years {
		periods = append(periods, Season(year))
	}
	return periods
}

// ParsePeriod parses an explicit "start:end" window with 2006-01-02 dates.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period %q, expected start:end", s)
	}
	start, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period start %q: %w", parts[0], err)
	}
	end, err := time.Parse(dateLayout, parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period end %q: %w", parts[1], err)
	}
	if !end.After(start) {
		return Period{}, fmt.Errorf("period end %s is not after start %s", parts[1], parts[0])
	}
	return Period{Start: start, End: end}, nil
}
