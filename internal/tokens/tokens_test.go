package tokens

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"hi", 1},
		{"hello world!!", 4},
		{"a longer piece of text that has more characters", 12},
	}
	for _, tt := range tests {
		if got := Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestExceedsCap(t *testing.T) {
	if ExceedsCap(InferenceCap) {
		t.Error("exactly at cap should not exceed")
	}
	if !ExceedsCap(InferenceCap + 1) {
		t.Error("one over cap should exceed")
	}
}
