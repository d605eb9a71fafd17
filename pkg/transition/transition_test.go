package transition

import "testing"

func TestIsWeak(t *testing.T) {
	tests := []struct {
		name         string
		attemptCount int
		successCount int
		want         bool
	}{
		{"below attempt threshold", 2, 0, false},
		{"at threshold but high success", 3, 3, false},
		{"at threshold with low success", 3, 2, true},
		{"well above threshold with low success", 10, 5, true},
		{"exactly at rate boundary not weak", 10, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWeak(tt.attemptCount, tt.successCount); got != tt.want {
				t.Errorf("IsWeak(%d, %d) = %v, want %v", tt.attemptCount, tt.successCount, got, tt.want)
			}
		})
	}
}

func TestSuccessRate(t *testing.T) {
	if got := SuccessRate(0, 0); got != 0 {
		t.Errorf("SuccessRate(0, 0) = %v, want 0", got)
	}
	if got := SuccessRate(4, 3); got != 0.75 {
		t.Errorf("SuccessRate(4, 3) = %v, want 0.75", got)
	}
}
