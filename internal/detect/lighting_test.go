package detect

import (
	"testing"

	"wetwatch/internal/imaging"
)

func TestLit(t *testing.T) {
	tests := []struct {
		name      string
		frame     *imaging.Frame
		threshold float64
		want      bool
	}{
		{"all dark", imaging.New(100, 100, 0), DefaultLightsThreshold, false},
		{"all bright", imaging.New(100, 100, 255), DefaultLightsThreshold, true},
		{"exactly at threshold", imaging.New(100, 100, 100), DefaultLightsThreshold, false},
		{"just above threshold", imaging.New(100, 100, 101), DefaultLightsThreshold, true},
		{"just below threshold", imaging.New(100, 100, 99), DefaultLightsThreshold, false},
		{"empty frame", imaging.New(0, 0, 0), DefaultLightsThreshold, false},
		{"custom threshold not lit", imaging.New(50, 50, 180), 200, false},
		{"custom threshold lit", imaging.New(50, 50, 180), 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lit(tt.frame, tt.threshold); got != tt.want {
				t.Errorf("Lit() = %v, want %v", got, tt.want)
			}
		})
	}
}
