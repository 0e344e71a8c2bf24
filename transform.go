package graphcanvas

import "math"

const (
	// smallNumber is the squared-distance threshold below which scalar
	// interpolation snaps to its target.
	smallNumber = 1e-8
	// kindaSmallNumber is the same threshold for 2D interpolation.
	kindaSmallNumber = 1e-4
)

// safeDivide returns a/b, or 0 when b is 0.
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// safeDivideVec2 divides both components by d, yielding zero for d == 0.
func safeDivideVec2(v Vec2, d float64) Vec2 {
	return Vec2{safeDivide(v.X, d), safeDivide(v.Y, d)}
}

// clampFloat restricts v to [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// interpTo moves current toward target by a fraction dt*speed of the
// remaining distance, snapping once the remainder is negligible. A
// non-positive speed jumps straight to target.
func interpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < smallNumber {
		return target
	}
	return current + dist*clampFloat(dt*speed, 0, 1)
}

// interpVec2To is interpTo applied to a 2D point.
func interpVec2To(current, target Vec2, dt, speed float64) Vec2 {
	if speed <= 0 {
		return target
	}
	dist := target.Sub(current)
	if dist.LengthSquared() < kindaSmallNumber {
		return target
	}
	return current.Add(dist.Scale(clampFloat(dt*speed, 0, 1)))
}

// snap rounds v to the nearest multiple of step.
func snap(v, step float64) float64 {
	return math.Round(v/step) * step
}
