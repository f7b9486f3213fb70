package format

import (
	"testing"
	"time"
)

func TestRelative(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-time.Minute), "1 minute ago"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"days", now.Add(-48 * time.Hour), "2 days ago"},
		{"months", now.Add(-65 * 24 * time.Hour), "2 months ago"},
		{"years", now.Add(-800 * 24 * time.Hour), "2 years ago"},
		{"future", now.Add(26 * time.Hour), "in 1 day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relative(tt.t, now); got != tt.want {
				t.Errorf("Relative() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime("not a time"); ok {
		t.Error("ParseTime(garbage) ok = true, want false")
	}
	got, ok := ParseTime("2024-06-01T12:00:00Z")
	if !ok {
		t.Fatal("ParseTime(rfc3339) ok = false, want true")
	}
	if got.Year() != 2024 {
		t.Errorf("ParseTime year = %d, want 2024", got.Year())
	}
	if _, ok := ParseTime(42); ok {
		t.Error("ParseTime(int) ok = true, want false")
	}
}
