package deadline

import (
	"testing"
	"time"

	"github.com/skriv/kontrakt/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_CalendarAfter(t *testing.T) {
	rd := models.RelativeDate{Value: 10, Type: models.DateCalendar, Direction: models.DirectionAfter}
	got := Resolve(rd, date(2025, time.January, 6))
	if want := date(2025, time.January, 16); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_WorkingAfterSkipsWeekend(t *testing.T) {
	// 2025-01-06 is a Monday; 3 working days after is Thursday 2025-01-09.
	rd := models.RelativeDate{Value: 3, Type: models.DateWorking, Direction: models.DirectionAfter}
	got := Resolve(rd, date(2025, time.January, 6))
	if want := date(2025, time.January, 9); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	// 5 working days after Monday crosses one weekend: next Monday.
	rd.Value = 5
	got = Resolve(rd, date(2025, time.January, 6))
	if want := date(2025, time.January, 13); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_WorkingBefore(t *testing.T) {
	// 2 working days before Monday 2025-01-13 is Thursday 2025-01-09.
	rd := models.RelativeDate{Value: 2, Type: models.DateWorking, Direction: models.DirectionBefore}
	got := Resolve(rd, date(2025, time.January, 13))
	if want := date(2025, time.January, 9); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_CalendarBefore(t *testing.T) {
	rd := models.RelativeDate{Value: 7, Type: models.DateCalendar, Direction: models.DirectionBefore}
	got := Resolve(rd, date(2025, time.March, 10))
	if want := date(2025, time.March, 3); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIsOverdue(t *testing.T) {
	today := date(2025, time.June, 10)
	if !IsOverdue(date(2025, time.June, 9), today) {
		t.Error("yesterday must be overdue")
	}
	if IsOverdue(date(2025, time.June, 10), today) {
		t.Error("today must not be overdue")
	}
	// Time of day is ignored.
	if IsOverdue(time.Date(2025, time.June, 10, 23, 59, 0, 0, time.UTC), today) {
		t.Error("same date with later time must not be overdue")
	}
}

func TestIsApproaching(t *testing.T) {
	today := date(2025, time.June, 10)
	tests := []struct {
		deadline time.Time
		want     bool
	}{
		{date(2025, time.June, 10), true},
		{date(2025, time.June, 13), true},
		{date(2025, time.June, 14), false},
		{date(2025, time.June, 9), false},
	}
	for _, tt := range tests {
		if got := IsApproaching(tt.deadline, today); got != tt.want {
			t.Errorf("IsApproaching(%v) = %v, want %v", tt.deadline, got, tt.want)
		}
	}
}
