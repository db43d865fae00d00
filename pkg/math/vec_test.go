package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	l := v.Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("normalizing the zero vector should give the zero vector")
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -4}
	if got := a.Min(b); got != (Vec3{1, 2, -4}) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Max = %v", got)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(0.1, 1.0, 0); got != 0.1 {
		t.Errorf("Lerp(0.1, 1, 0) = %v", got)
	}
	if got := Lerp(0.1, 1.0, 1); abs(got-1.0) > 1e-6 {
		t.Errorf("Lerp(0.1, 1, 1) = %v", got)
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		x, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{10, 1},
	}
	for _, tt := range tests {
		if got := Smoothstep(0, 1, tt.x); got != tt.want {
			t.Errorf("Smoothstep(0, 1, %v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
