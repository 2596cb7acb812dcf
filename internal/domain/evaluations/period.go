package evaluations

import (
	"fmt"
	"time"

	"salesperf/internal/domain/scoring"
)

// PeriodQuery is a roll-up filter. The first matching form wins: an explicit
// date range, then month+year, then quarter+year, then year alone.
type PeriodQuery struct {
	From    time.Time
	To      time.Time
	Month   int
	Quarter int
	Year    int
}

// Period is a resolved half-open range [From, To) plus the year and quarter
// shown next to the numbers.
type Period struct {
	From    time.Time
	To      time.Time
	Display scoring.DisplayPeriod
}

func ResolvePeriod(q PeriodQuery, now time.Time) (Period, error) {
	if q.Year != 0 && (q.Year < MinYear || q.Year > MaxYear) {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, q.Year)
	}
	if q.Month < 0 || q.Month > 12 {
		return Period{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidPeriod)
	}
	if q.Quarter < 0 || q.Quarter > 4 {
		return Period{}, fmt.Errorf("%w: quarter must be between 1 and 4", ErrInvalidPeriod)
	}

	switch {
	case !q.From.IsZero() || !q.To.IsZero():
		if q.From.IsZero() || q.To.IsZero() {
			return Period{}, fmt.Errorf("%w: from and to must be given together", ErrInvalidPeriod)
		}
		from, to := dateOnly(q.From), dateOnly(q.To)
		if to.Before(from) {
			return Period{}, fmt.Errorf("%w: from must be on or before to", ErrInvalidPeriod)
		}
		return Period{
			From:    from,
			To:      to.AddDate(0, 0, 1),
			Display: scoring.ResolveDisplayPeriod(q.Year, q.Quarter, now),
		}, nil
	case q.Month > 0:
		year := yearOrCurrent(q.Year, now)
		if q.Quarter > 0 && q.Quarter != scoring.QuarterOf(time.Month(q.Month)) {
			return Period{}, fmt.Errorf("%w: month %d is not in quarter %d", ErrInvalidPeriod, q.Month, q.Quarter)
		}
		from := time.Date(year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			From:    from,
			To:      from.AddDate(0, 1, 0),
			Display: scoring.ResolveDisplayPeriod(year, scoring.QuarterOf(time.Month(q.Month)), now),
		}, nil
	case q.Quarter > 0:
		year := yearOrCurrent(q.Year, now)
		from, to := QuarterRange(year, q.Quarter)
		return Period{From: from, To: to, Display: scoring.ResolveDisplayPeriod(year, q.Quarter, now)}, nil
	default:
		year := yearOrCurrent(q.Year, now)
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return Period{
			From:    from,
			To:      from.AddDate(1, 0, 0),
			Display: scoring.ResolveDisplayPeriod(year, 0, now),
		}, nil
	}
}

// QuarterRange returns [first day of quarter, first day of next quarter).
func QuarterRange(year, quarter int) (time.Time, time.Time) {
	from := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 3, 0)
}

func yearOrCurrent(year int, now time.Time) int {
	if year == 0 {
		return now.Year()
	}
	return year
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
