package math

import (
	"math"
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{3, 4, 5}
	got := a.Add(b)
	want := Vec3{4, 6, 8}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	got := v.Length()
	want := 7.0
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if zero := (Vec3{}).Normalize(); zero != (Vec3{}) {
		t.Errorf("Vec3{}.Normalize() = %v, want zero", zero)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 4, -1}
	if got, want := a.Min(b), (Vec3{1, 4, -2}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, -1}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
}

func TestVec3Component(t *testing.T) {
	v := Vec3{7, 8, 9}
	for i, want := range []float64{7, 8, 9} {
		if got := v.Component(i); got != want {
			t.Errorf("Vec3.Component(%d) = %v, want %v", i, got, want)
		}
	}
	if got, want := v.WithComponent(1, 0), (Vec3{7, 0, 9}); got != want {
		t.Errorf("Vec3.WithComponent() = %v, want %v", got, want)
	}
}

func TestAABBReset(t *testing.T) {
	b := ResetAABB()
	if !b.IsEmpty() {
		t.Fatal("ResetAABB() should be empty")
	}
	b = b.Expand(Vec3{1, 2, 3})
	if b.Min != b.Max || b.Min != (Vec3{1, 2, 3}) {
		t.Errorf("ResetAABB().Expand(p) = %v, want point box", b)
	}
}

func TestAABBFromPoints(t *testing.T) {
	b := AABBFromPoints(Vec3{1, -1, 0}, Vec3{-2, 4, 1}, Vec3{0, 0, -3})
	want := AABB{Min: Vec3{-2, -1, -3}, Max: Vec3{1, 4, 1}}
	if b != want {
		t.Errorf("AABBFromPoints() = %v, want %v", b, want)
	}
	if got := b.Dims(); got != (Vec3{3, 5, 4}) {
		t.Errorf("AABB.Dims() = %v", got)
	}
	if got := b.Center(); got != (Vec3{-0.5, 1.5, -1}) {
		t.Errorf("AABB.Center() = %v", got)
	}
}

func TestAABBContains(t *testing.T) {
	b := NewAABB(Vec3{3, 1, 6}, Vec3{4, 2, 7})
	tests := []struct {
		name string
		p    Vec3
		want bool
	}{
		{"inside", Vec3{3.5, 1.5, 6.5}, true},
		{"min corner", Vec3{3, 1, 6}, true},
		{"max corner", Vec3{4, 2, 7}, true},
		{"outside x", Vec3{4.1, 1.5, 6.5}, false},
		{"outside z", Vec3{3.5, 1.5, 5.9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.want {
				t.Errorf("AABB.Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if (Vec3{math.Inf(1), 0, 0}).IsFinite() {
		t.Error("infinite vector reported as finite")
	}
}
