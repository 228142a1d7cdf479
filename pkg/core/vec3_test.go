package core

import (
	"math"
	"math/rand"
	"testing"
)

func vecApproxEqual(a, b Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		got      Vec3
		expected Vec3
	}{
		{"add", a.Add(b), NewVec3(5, -3, 9)},
		{"subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"multiply scalar", a.Multiply(2), NewVec3(2, 4, 6)},
		{"divide scalar", b.Divide(2), NewVec3(2, -2.5, 3)},
		{"multiply component-wise", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"lerp midpoint", NewVec3(1, 1, 1).Lerp(NewVec3(0.5, 0.7, 1.0), 0.5), NewVec3(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vecApproxEqual(tt.got, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	if dot := a.Dot(b); dot != 12 {
		t.Errorf("Expected dot product 12, got %f", dot)
	}
	if lengthSq := a.LengthSquared(); lengthSq != 14 {
		t.Errorf("Expected squared length 14, got %f", lengthSq)
	}
}

func TestVec3_NormalizeHasUnitLength(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		v := RandomVec3InRange(random, -100, 100)
		if v.Length() == 0 {
			continue
		}
		if length := v.Normalize().Length(); math.Abs(length-1.0) > 1e-9 {
			t.Fatalf("Normalize(%v) has length %v, expected 1", v, length)
		}
	}

	small := NewVec3(1e-6, -2e-6, 3e-6)
	if length := small.Normalize().Length(); math.Abs(length-1.0) > 1e-9 {
		t.Errorf("Expected small vector to normalize to unit length, got %v", length)
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	zero := NewVec3(0, 0, 0).Normalize()
	if zero != (Vec3{}) {
		t.Errorf("Expected zero vector, got %v", zero)
	}
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"all below epsilon", NewVec3(1e-9, -1e-9, 5e-9), true},
		{"x above epsilon", NewVec3(1e-7, 0, 0), false},
		{"z above epsilon only", NewVec3(0, 0, -2e-8), false},
		{"unit", NewVec3(0, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %t, expected %t", tt.v, got, tt.expected)
			}
		})
	}
}

func TestVec3_Reflect(t *testing.T) {
	incoming := NewVec3(1, -1, 0)
	normal := NewVec3(0, 1, 0)

	reflected := incoming.Reflect(normal)
	expected := NewVec3(1, 1, 0)
	if !vecApproxEqual(reflected, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, reflected)
	}
}

func TestVec3_Refract(t *testing.T) {
	normal := NewVec3(0, 1, 0)

	t.Run("matched indices pass straight through", func(t *testing.T) {
		incoming := NewVec3(1, -1, 0).Normalize()
		refracted := incoming.Refract(normal, 1.0)
		if !vecApproxEqual(refracted, incoming, 1e-12) {
			t.Errorf("Expected %v, got %v", incoming, refracted)
		}
	})

	t.Run("normal incidence is unchanged", func(t *testing.T) {
		incoming := NewVec3(0, -1, 0)
		refracted := incoming.Refract(normal, 1.0/1.5)
		if !vecApproxEqual(refracted, incoming, 1e-12) {
			t.Errorf("Expected %v, got %v", incoming, refracted)
		}
	})

	t.Run("snell's law holds entering glass", func(t *testing.T) {
		theta := math.Pi / 4
		incoming := NewVec3(math.Sin(theta), -math.Cos(theta), 0)
		ratio := 1.0 / 1.5
		refracted := incoming.Refract(normal, ratio)

		sinOut := refracted.X / refracted.Length()
		expectedSin := ratio * math.Sin(theta)
		if math.Abs(sinOut-expectedSin) > 1e-9 {
			t.Errorf("Expected sin(theta') %f, got %f", expectedSin, sinOut)
		}
		if math.Abs(refracted.Length()-1.0) > 1e-9 {
			t.Errorf("Expected unit refracted vector, got length %f", refracted.Length())
		}
	})

	t.Run("cosine drift does not produce NaN", func(t *testing.T) {
		incoming := NewVec3(0, -1.0000000001, 0)
		refracted := incoming.Refract(normal, 1.5)
		if !refracted.IsFinite() {
			t.Errorf("Expected finite result, got %v", refracted)
		}
	})
}

func TestVec3_GammaCorrect(t *testing.T) {
	c := NewVec3(0.25, 1.0, 0.0)

	if got := c.GammaCorrect(1.0); got != c {
		t.Errorf("Gamma 1 should be identity, got %v", got)
	}

	expected := NewVec3(0.5, 1.0, 0.0)
	if got := c.GammaCorrect(2.0); !vecApproxEqual(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestVec3_Clamp(t *testing.T) {
	got := NewVec3(-0.5, 0.5, 1.5).Clamp(0, 0.999)
	expected := NewVec3(0, 0.5, 0.999)
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -2))
	if got := ray.At(1.5); got != NewVec3(1, 2, 0) {
		t.Errorf("Expected (1, 2, 0), got %v", got)
	}
	if got := ray.At(0); got != ray.Origin {
		t.Errorf("Expected origin at t=0, got %v", got)
	}
}
