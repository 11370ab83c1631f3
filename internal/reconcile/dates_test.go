package reconcile

import (
	"testing"
	"time"
)

func TestParseDate_RoundTrip(t *testing.T) {
	day, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if got := FormatDate(day); got != "2025-03-09" {
		t.Errorf("Expected round trip to 2025-03-09, got %s", got)
	}
}

func TestParseDate_RejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "2025-3-9", "09-03-2025", "2025-03-09T00:00:00Z", "not-a-date"} {
		if _, err := ParseDate(input); err == nil {
			t.Errorf("Expected ParseDate(%q) to fail", input)
		}
	}
}

func TestParseDate_UsesLocalCalendarDay(t *testing.T) {
	day, err := ParseDate("2025-06-15")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if day.Location() != time.Local {
		t.Errorf("Expected local location, got %v", day.Location())
	}
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Errorf("Expected midnight, got %02d:%02d", day.Hour(), day.Minute())
	}
}

func TestDatesBetween(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{
			name:  "single day",
			start: "2025-01-15",
			end:   "2025-01-15",
			want:  []string{"2025-01-15"},
		},
		{
			name:  "spans month boundary",
			start: "2025-01-30",
			end:   "2025-02-02",
			want:  []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"},
		},
		{
			name:  "start after end",
			start: "2025-02-02",
			end:   "2025-01-30",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DatesBetween(tt.start, tt.end)
			if err != nil {
				t.Fatalf("DatesBetween failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d dates, got %d (%v)", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Position %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestDatesBetween_SpansLeapDay(t *testing.T) {
	got, err := DatesBetween("2024-02-28", "2024-03-01")
	if err != nil {
		t.Fatalf("DatesBetween failed: %v", err)
	}
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDatesBetween_InvalidInput(t *testing.T) {
	if _, err := DatesBetween("bogus", "2025-01-01"); err == nil {
		t.Error("Expected error for invalid start date")
	}
	if _, err := DatesBetween("2025-01-01", "bogus"); err == nil {
		t.Error("Expected error for invalid end date")
	}
}
