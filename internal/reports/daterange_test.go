package reports

import (
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		name      string
		start     string
		end       string
		wantStart *time.Time
		wantEnd   *time.Time
	}{
		{
			name: "both empty",
		},
		{
			name:      "start only",
			start:     "2024-03-01",
			wantStart: ptrTime(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "end snaps to end of day",
			end:     "2024-03-31",
			wantEnd: ptrTime(time.Date(2024, time.March, 31, 23, 59, 59, 999000000, time.UTC)),
		},
		{
			name:      "both bounds",
			start:     "2024-01-15",
			end:       "2024-02-15",
			wantStart: ptrTime(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)),
			wantEnd:   ptrTime(time.Date(2024, time.February, 15, 23, 59, 59, 999000000, time.UTC)),
		},
		{
			name:  "garbage degrades to absent bounds",
			start: "not-a-date",
			end:   "2024-13-45",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := ParseRange(tc.start, tc.end)
			if (r.Start == nil) != (tc.wantStart == nil) {
				t.Fatalf("start presence mismatch: got %v", r.Start)
			}
			if r.Start != nil && !r.Start.Equal(*tc.wantStart) {
				t.Fatalf("start: got %v, want %v", r.Start, tc.wantStart)
			}
			if (r.End == nil) != (tc.wantEnd == nil) {
				t.Fatalf("end presence mismatch: got %v", r.End)
			}
			if r.End != nil && !r.End.Equal(*tc.wantEnd) {
				t.Fatalf("end: got %v, want %v", r.End, tc.wantEnd)
			}
			if r.StartInput != tc.start || r.EndInput != tc.end {
				t.Fatalf("raw inputs not preserved: %q %q", r.StartInput, r.EndInput)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := ParseRange("2024-03-01", "2024-03-31")

	if !r.Contains(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("start of range should be included")
	}
	if !r.Contains(time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatal("end of last day should be included")
	}
	if r.Contains(time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)) {
		t.Fatal("moment before range should be excluded")
	}
	if r.Contains(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("moment after range should be excluded")
	}
}

func TestPreviousWindowDefaultsToThirtyDays(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	start, end := DateRange{}.PreviousWindow(now)
	if !end.Equal(now) {
		t.Fatalf("end: got %v, want %v", end, now)
	}
	if want := now.AddDate(0, 0, -30); !start.Equal(want) {
		t.Fatalf("start: got %v, want %v", start, want)
	}
}

func TestPreviousWindowUsesExplicitRangeLength(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	r := ParseRange("2024-06-01", "2024-06-10")

	start, end := r.PreviousWindow(now)
	if !end.Equal(*r.Start) {
		t.Fatalf("end should be the range start: got %v", end)
	}
	// The inclusive range spans just under 10 days; the preceding window has
	// the same length.
	if got := end.Sub(start); got != r.End.Sub(*r.Start) {
		t.Fatalf("window length: got %v, want %v", got, r.End.Sub(*r.Start))
	}
}

func TestPreviousWindowDegenerateRange(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	r := ParseRange("2024-06-10", "2024-06-01")

	start, end := r.PreviousWindow(now)
	if !start.Equal(end) {
		t.Fatalf("degenerate range should yield an empty window: %v .. %v", start, end)
	}
}
