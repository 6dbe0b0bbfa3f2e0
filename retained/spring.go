package retained

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// springSamples is the resolution of the precomputed spring curve.
const springSamples = 120

// SpringEasing returns an easing that follows a damped spring settling at 1
// over the animation's duration.
//
// damping is the damping ratio (1 is critically damped, lower values
// overshoot). velocity is the initial velocity expressed, as on mobile
// platforms, in units of the total distance per second; duration converts it
// into normalized time. The curve always ends exactly at 1.
func SpringEasing(damping, velocity, durationSeconds float64) EasingFunc {
	if damping <= 0 {
		damping = 0.01
	}
	// Pick the angular frequency so the envelope e^(-ζωt) has decayed to
	// 0.1% by t=1. Overdamped springs decay with the slower root.
	frequency := math.Log(1000) / damping
	if damping > 1 {
		frequency = math.Log(1000) / (damping - math.Sqrt(damping*damping-1))
	}

	spring := harmonica.NewSpring(1.0/springSamples, frequency, damping)
	curve := make([]float64, springSamples+1)
	pos, vel := 0.0, velocity*durationSeconds
	for i := 1; i <= springSamples; i++ {
		pos, vel = spring.Update(pos, vel, 1)
		curve[i] = pos
	}
	curve[springSamples] = 1

	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		x := t * springSamples
		i := int(x)
		frac := x - float64(i)
		return curve[i] + (curve[i+1]-curve[i])*frac
	}
}
