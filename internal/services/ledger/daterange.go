package ledger

import (
	"time"
)

const (
	dateLayout         = "2006-01-02"
	defaultRangeWindow = 7 * 24 * time.Hour
)

// DateRange is an inclusive [From, End] interval.
type DateRange struct {
	From time.Time
	End  time.Time
}

// NewDateRange parses optional YYYY-MM-DD bounds in loc.
//
// A missing fromDate defaults to now minus seven days and a missing endDate
// to now. endDate covers its whole day. endDate without fromDate is rejected.
// Only explicit bounds are compared: a fromDate later than now alone yields an
// empty range rather than an error.
func NewDateRange(fromDate, endDate string, now time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}

	if endDate != "" && fromDate == "" {
		return DateRange{}, invalid("from_date", "from_date is required when end_date is set")
	}

	rng := DateRange{From: now.Add(-defaultRangeWindow), End: now}

	if fromDate != "" {
		from, err := time.ParseInLocation(dateLayout, fromDate, loc)
		if err != nil {
			return DateRange{}, invalid("from_date", "must be a date in YYYY-MM-DD format")
		}

		rng.From = from
	}

	if endDate != "" {
		end, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return DateRange{}, invalid("end_date", "must be a date in YYYY-MM-DD format")
		}

		rng.End = end.AddDate(0, 0, 1).Add(-time.Nanosecond)

		if rng.From.After(rng.End) {
			return DateRange{}, invalid("from_date", "from_date cannot be after end_date")
		}
	}

	return rng, nil
}

// DateRange parses bounds with the service clock and time zone.
func (s *Service) DateRange(fromDate, endDate string) (DateRange, error) {
	return NewDateRange(fromDate, endDate, s.now(), s.loc)
}
