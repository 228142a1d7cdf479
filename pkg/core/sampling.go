package core

import (
	"math/rand"
)

// All samplers take the caller's generator. A *rand.Rand is not safe for
// concurrent use, so each render worker owns exactly one.

// RandomVec3 returns a vector with each component uniform in [0, 1)
func RandomVec3(random *rand.Rand) Vec3 {
	return NewVec3(random.Float64(), random.Float64(), random.Float64())
}

// RandomVec3InRange returns a vector with each component uniform in [minVal, maxVal)
func RandomVec3InRange(random *rand.Rand, minVal, maxVal float64) Vec3 {
	span := maxVal - minVal
	return NewVec3(
		minVal+span*random.Float64(),
		minVal+span*random.Float64(),
		minVal+span*random.Float64(),
	)
}

// RandomInUnitSphere generates a random point strictly inside the unit sphere
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		// Generate random point in [-1,1)³ cube
		p := RandomVec3InRange(random, -1, 1)
		// Accept if inside unit sphere (about 52% of draws)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector generates a uniformly distributed direction on the unit sphere
func RandomUnitVector(random *rand.Rand) Vec3 {
	for {
		p := RandomInUnitSphere(random)
		// Points too close to the origin lose precision when normalized
		if lengthSq := p.LengthSquared(); lengthSq > 1e-160 {
			return p.Normalize()
		}
	}
}

// RandomInHemisphere returns a point in the unit sphere on the same side as normal
func RandomInHemisphere(random *rand.Rand, normal Vec3) Vec3 {
	inUnitSphere := RandomInUnitSphere(random)
	if inUnitSphere.Dot(normal) > 0.0 {
		return inUnitSphere
	}
	return inUnitSphere.Negate()
}

// RandomInUnitDisk generates a random point strictly inside the unit disk on z=0 (for depth of field)
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		// Generate random point in [-1,1) x [-1,1) square
		p := NewVec3(2*random.Float64()-1, 2*random.Float64()-1, 0)
		// Accept if inside unit disk
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}
