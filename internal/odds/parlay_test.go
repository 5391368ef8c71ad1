package odds

import (
	"math"
	"testing"
)

func TestParlayDecimal(t *testing.T) {
	tests := []struct {
		name string
		legs []int
		want float64
	}{
		{
			name: "two even money legs",
			legs: []int{100, 100},
			want: 4.0,
		},
		{
			name: "favorite and dog",
			legs: []int{-200, 150},
			want: 1.5 * 2.5,
		},
		{
			name: "single leg",
			legs: []int{-110},
			want: 1.0 + 100.0/110.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParlayDecimal(tt.legs)
			if err != nil {
				t.Fatalf("ParlayDecimal(%v) error: %v", tt.legs, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParlayDecimal(%v) = %v, want %v", tt.legs, got, tt.want)
			}
		})
	}
}

func TestParlayAmericanBoundary(t *testing.T) {
	// Two legs multiplying to exactly decimal 2.0 must convert through the
	// positive branch: +100.
	got, err := ParlayAmerican([]int{-100, -100})
	if err != nil {
		t.Fatalf("ParlayAmerican error: %v", err)
	}
	if got != 100 {
		t.Errorf("ParlayAmerican at decimal 2.0 = %+d, want +100", got)
	}
}

func TestParlayRejectsInvalidLegs(t *testing.T) {
	if _, err := ParlayDecimal(nil); err == nil {
		t.Error("empty parlay should return an error")
	}
	if _, err := ParlayDecimal([]int{-110, 0}); err == nil {
		t.Error("zero-odds leg should return an error")
	}
}
