package mesh

import (
	gomath "math"

	"github.com/Faultbox/wavesim/pkg/math"
)

// Attribute describes the acoustic material at a vertex or in a region.
type Attribute struct {
	Reflection   float64 `yaml:"reflection"`
	Transmission float64 `yaml:"transmission"`
	Absorption   float64 `yaml:"absorption"`
	// Speed of sound in m/s.
	SoundVelocity float64 `yaml:"sound_velocity"`
	// Flow velocity of the medium.
	Velocity math.Vec3 `yaml:"velocity"`
}

// Solid returns the fully absorbing preset.
func Solid() Attribute {
	return Attribute{Absorption: 1, SoundVelocity: 2000}
}

// Air returns the fully transmitting preset.
func Air() Attribute {
	return Attribute{Transmission: 1, SoundVelocity: 340}
}

// Normalize scales reflection, transmission and absorption so they sum to 1.
// An attribute whose three fractions sum to zero is returned unchanged.
func (a Attribute) Normalize() Attribute {
	sum := a.Reflection + a.Transmission + a.Absorption
	if sum == 0 {
		return a
	}
	a.Reflection /= sum
	a.Transmission /= sum
	a.Absorption /= sum
	return a
}

// Same reports exact equality on all five fields.
func (a Attribute) Same(other Attribute) bool {
	return a == other
}

// Similar reports equality within tol on every scalar, with sound velocity
// compared relative to its magnitude.
func (a Attribute) Similar(other Attribute, tol float64) bool {
	near := func(x, y, scale float64) bool {
		return gomath.Abs(x-y) <= tol*gomath.Max(scale, 1)
	}
	velScale := gomath.Max(gomath.Abs(a.SoundVelocity), gomath.Abs(other.SoundVelocity))
	return near(a.Reflection, other.Reflection, 1) &&
		near(a.Transmission, other.Transmission, 1) &&
		near(a.Absorption, other.Absorption, 1) &&
		near(a.SoundVelocity, other.SoundVelocity, velScale) &&
		near(a.Velocity.X, other.Velocity.X, velScale) &&
		near(a.Velocity.Y, other.Velocity.Y, velScale) &&
		near(a.Velocity.Z, other.Velocity.Z, velScale)
}

// Valid reports whether the three fractions are non-negative and the sound
// velocity is positive.
func (a Attribute) Valid() bool {
	return a.Reflection >= 0 && a.Transmission >= 0 && a.Absorption >= 0 && a.SoundVelocity > 0
}
