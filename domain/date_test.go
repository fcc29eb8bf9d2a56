package domain

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	// 2000-01-02 was a Sunday.
	tests := []struct {
		iso  string
		want string
	}{
		{iso: "2000-01-02", want: "2000-01-02"},
		{iso: "2000-01-05", want: "2000-01-02"},
		{iso: "2000-01-08", want: "2000-01-02"},
		{iso: "2000-01-09", want: "2000-01-09"},
	}
	for _, tt := range tests {
		if got := StartOfWeek(tt.iso); got != tt.want {
			t.Fatalf("StartOfWeek(%s) = %s, want %s", tt.iso, got, tt.want)
		}
	}
}

func TestAddDaysCrossesMonths(t *testing.T) {
	d := ParseDate("2000-01-30")
	if got := FormatDate(AddDays(d, 5)); got != "2000-02-04" {
		t.Fatalf("AddDays = %s, want 2000-02-04", got)
	}
	if got := FormatDate(AddDays(d, -30)); got != "1999-12-31" {
		t.Fatalf("AddDays negative = %s, want 1999-12-31", got)
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2000-01-02", "1999-12-31", "2026-08-31"}
	for _, iso := range valid {
		if !ValidDate(iso) {
			t.Fatalf("ValidDate(%s) = false", iso)
		}
	}
	invalid := []string{"", "not-a-date", "2000-1-5", "05/01/2000", "2000-01-05T00:00:00Z", "2000-13-01"}
	for _, iso := range invalid {
		if ValidDate(iso) {
			t.Fatalf("ValidDate(%s) = true", iso)
		}
	}
}

func TestParseDateFallsBackToToday(t *testing.T) {
	if got := FormatDate(ParseDate("")); got != Today() {
		t.Fatalf("ParseDate(\"\") = %s, want today %s", got, Today())
	}
	if got := FormatDate(ParseDate("not-a-date")); got != Today() {
		t.Fatalf("ParseDate(junk) = %s, want today %s", got, Today())
	}
}

func TestDaysUntil(t *testing.T) {
	if got := DaysUntil(""); got != nil {
		t.Fatalf("DaysUntil(\"\") = %v, want nil", got)
	}
	if got := DaysUntil(Today()); got == nil || *got != 0 {
		t.Fatalf("DaysUntil(today) = %v, want 0", got)
	}
	future := FormatDate(AddDays(time.Now(), 7))
	if got := DaysUntil(future); got == nil || *got != 7 {
		t.Fatalf("DaysUntil(+7) = %v, want 7", got)
	}
	past := FormatDate(AddDays(time.Now(), -3))
	if got := DaysUntil(past); got == nil || *got != -3 {
		t.Fatalf("DaysUntil(-3) = %v, want -3", got)
	}
}

func TestDueLabel(t *testing.T) {
	if got := DueLabel(""); got != "" {
		t.Fatalf("DueLabel(\"\") = %q, want empty", got)
	}
	if got := DueLabel(Today()); got != "Due today" {
		t.Fatalf("DueLabel(today) = %q", got)
	}
	tomorrow := FormatDate(AddDays(time.Now(), 1))
	if got := DueLabel(tomorrow); got != "Due tomorrow" {
		t.Fatalf("DueLabel(tomorrow) = %q", got)
	}
	past := AddDays(time.Now(), -4)
	if got, want := DueLabel(FormatDate(past)), "Overdue "+past.Format("Jan 2"); got != want {
		t.Fatalf("DueLabel(past) = %q, want %q", got, want)
	}
	future := AddDays(time.Now(), 9)
	if got, want := DueLabel(FormatDate(future)), "Due "+future.Format("Jan 2"); got != want {
		t.Fatalf("DueLabel(future) = %q, want %q", got, want)
	}
}

func TestDateHeading(t *testing.T) {
	if got := DateHeading(""); got != "All Tasks" {
		t.Fatalf("DateHeading(\"\") = %q", got)
	}
	if got := DateHeading("2000-01-02"); got != "Sunday, January 2, 2000" {
		t.Fatalf("DateHeading = %q", got)
	}
}

func TestWeekLabel(t *testing.T) {
	if got := WeekLabel("2000-01-02"); got != "Jan 2 – 8, 2000" {
		t.Fatalf("WeekLabel same month = %q", got)
	}
	if got := WeekLabel("2000-01-30"); got != "Jan 30 – Feb 5, 2000" {
		t.Fatalf("WeekLabel cross month = %q", got)
	}
}

func TestTaskIsOverdue(t *testing.T) {
	today := "2000-01-05"
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "past incomplete", task: Task{DueDate: "2000-01-04"}, want: true},
		{name: "past completed", task: Task{DueDate: "2000-01-04", Completed: true}, want: false},
		{name: "due today", task: Task{DueDate: "2000-01-05"}, want: false},
		{name: "future", task: Task{DueDate: "2000-01-06"}, want: false},
		{name: "no due date", task: Task{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(today); got != tt.want {
				t.Fatalf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}
