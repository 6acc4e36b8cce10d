package reports

import "time"

// DateRange is an inclusive predicate over record creation timestamps,
// built from the optional startDate/endDate query inputs. The raw inputs
// are kept verbatim so every report can echo them back.
//
// A range whose start is after its end is degenerate: it matches nothing.
// That case is reported as empty aggregates, never as an error.
type DateRange struct {
	Start *time.Time
	End   *time.Time

	StartInput string
	EndInput   string
}

// RangeEcho is the dateRange block included in every report response.
type RangeEcho struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

const dateInputLayout = "2006-01-02"

// ParseRange normalizes optional YYYY-MM-DD inputs into an inclusive range.
// The start bound snaps to the start of its day, the end bound to
// 23:59:59.999 of its day, both in UTC (the notional timezone of stored
// timestamps). An unparseable input degrades to an absent bound rather than
// failing the report; the leniency is deliberate and uniform across all
// five report kinds.
func ParseRange(startDate, endDate string) DateRange {
	r := DateRange{StartInput: startDate, EndInput: endDate}

	if startDate != "" {
		if parsed, err := time.ParseInLocation(dateInputLayout, startDate, time.UTC); err == nil {
			r.Start = &parsed
		}
	}
	if endDate != "" {
		if parsed, err := time.ParseInLocation(dateInputLayout, endDate, time.UTC); err == nil {
			end := parsed.Add(24*time.Hour - time.Millisecond)
			r.End = &end
		}
	}
	return r
}

func (r DateRange) Echo() RangeEcho {
	return RangeEcho{StartDate: r.StartInput, EndDate: r.EndInput}
}

// Contains reports whether t satisfies both inclusive bounds.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// IsZero reports whether no bound was supplied (or both inputs failed to
// parse), i.e. the predicate accepts everything.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

const defaultGrowthWindow = 30 * 24 * time.Hour

// PreviousWindow derives the equal-length window immediately preceding the
// current one, for growth comparison. With both bounds present the window
// length is the explicit range's span; otherwise it defaults to 30 days
// ending now. The asymmetry mirrors the observed behavior of the dashboard
// this engine replaces and is preserved deliberately.
//
// A degenerate range collapses the window to zero length; callers treat
// that as "no preceding window" rather than fetching the single boundary
// instant.
func (r DateRange) PreviousWindow(now time.Time) (time.Time, time.Time) {
	length := defaultGrowthWindow
	if r.Start != nil && r.End != nil {
		length = r.End.Sub(*r.Start)
		if length < 0 {
			length = 0
		}
	}

	end := now
	if r.Start != nil {
		end = *r.Start
	}
	return end.Add(-length), end
}
