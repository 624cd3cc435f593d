package core

import "testing"

func TestRectEdges(t *testing.T) {
	r := Rect{X: 2, Y: 3, W: 5, H: 4}
	if r.Right() != 7 {
		t.Errorf("Right() = %d, want 7", r.Right())
	}
	if r.Bottom() != 7 {
		t.Errorf("Bottom() = %d, want 7", r.Bottom())
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 3, H: 2}
	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{2, 1, true},
		{3, 1, false},
		{2, 2, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{105, 0, 100, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.val, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.val, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestClampF(t *testing.T) {
	if got := ClampF(1.4, 0, 1); got != 1 {
		t.Errorf("ClampF(1.4, 0, 1) = %v, want 1", got)
	}
	if got := ClampF(-0.1, 0, 1); got != 0 {
		t.Errorf("ClampF(-0.1, 0, 1) = %v, want 0", got)
	}
	if got := ClampF(0.3, 0, 1); got != 0.3 {
		t.Errorf("ClampF(0.3, 0, 1) = %v, want 0.3", got)
	}
}

func TestTicksFor(t *testing.T) {
	cfg := RuntimeConfig{TickRate: 60}
	if got := cfg.TicksFor(0.5); got != 30 {
		t.Errorf("TicksFor(0.5) = %d, want 30", got)
	}
	if got := (RuntimeConfig{}).TicksFor(1); got != 60 {
		t.Errorf("TicksFor with zero rate = %d, want 60", got)
	}
}
