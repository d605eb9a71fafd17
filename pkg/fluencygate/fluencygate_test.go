package fluencygate

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name            string
		durationSeconds int
		errorCount      int
		want            int
	}{
		{"fast and clean", 120, 0, 100},
		{"exactly at time threshold", 180, 0, 100},
		{"slow but clean", 360, 0, 70}, // 50 - (360-180)/6 = 20, + 50
		{"fast but many errors", 120, 10, 75}, // 50 + (50 - 25)
		{"very slow and very wrong", 1000, 20, 0},
		{"below error threshold no penalty", 120, 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.durationSeconds, tt.errorCount); got != tt.want {
				t.Errorf("Score(%d, %d) = %d, want %d", tt.durationSeconds, tt.errorCount, got, tt.want)
			}
		})
	}
}

func TestPassed(t *testing.T) {
	if !Passed(70) {
		t.Error("Passed(70) = false, want true (boundary is inclusive)")
	}
	if Passed(69) {
		t.Error("Passed(69) = true, want false")
	}
}
