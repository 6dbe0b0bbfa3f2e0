package retained

import (
	"math"
	"testing"
	"time"
)

func TestAnimationFromToReachesTarget(t *testing.T) {
	reg := NewAnimationRegistry()
	var got []float32
	completed := 0
	anim := reg.Animate().
		Duration(100*time.Millisecond).
		Easing(EaseLinear).
		OnComplete(func() { completed++ }).
		FromTo(10, 20, func(v float32) { got = append(got, v) })

	reg.Tick(testEpoch)
	reg.Tick(testEpoch.Add(50 * time.Millisecond))
	if reg.Tick(testEpoch.Add(100 * time.Millisecond)) {
		t.Error("Tick() = true after the only animation finished")
	}

	want := []float32{10, 15, 20}
	if len(got) != len(want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update %d = %v, want %v", i, got[i], want[i])
		}
	}
	if completed != 1 || !anim.IsFinished() {
		t.Errorf("completed = %d, IsFinished = %v", completed, anim.IsFinished())
	}
}

func TestAnimationCancelSkipsCompletion(t *testing.T) {
	reg := NewAnimationRegistry()
	completed := false
	anim := reg.Animate().
		Duration(50 * time.Millisecond).
		OnComplete(func() { completed = true }).
		Custom(func(float64) {})

	reg.Tick(testEpoch)
	anim.Cancel()
	reg.Tick(testEpoch.Add(time.Second))

	if completed {
		t.Error("OnComplete ran for a cancelled animation")
	}
	if !anim.IsCancelled() || anim.IsFinished() {
		t.Errorf("IsCancelled, IsFinished = %v, %v, want true, false", anim.IsCancelled(), anim.IsFinished())
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d, want 0", reg.Count())
	}
}

func TestAnimationCancelledByOwnUpdate(t *testing.T) {
	reg := NewAnimationRegistry()
	completed := false
	var anim *Animation
	anim = reg.Animate().
		Duration(10 * time.Millisecond).
		OnComplete(func() { completed = true }).
		Custom(func(p float64) {
			if p == 1 {
				anim.Cancel()
			}
		})

	reg.Tick(testEpoch)
	reg.Tick(testEpoch.Add(time.Second))
	if completed {
		t.Error("OnComplete ran after the update cancelled the animation")
	}
}

func TestAnimationActiveChange(t *testing.T) {
	reg := NewAnimationRegistry()
	var changes []bool
	reg.OnActiveChange(func(active bool) { changes = append(changes, active) })

	reg.Animate().Duration(10 * time.Millisecond).Custom(func(float64) {})
	reg.Tick(testEpoch)
	reg.Tick(testEpoch.Add(20 * time.Millisecond))

	if len(changes) != 2 || !changes[0] || changes[1] {
		t.Errorf("changes = %v, want [true false]", changes)
	}
}

func TestAnimationAddedDuringTick(t *testing.T) {
	reg := NewAnimationRegistry()
	var second *Animation
	reg.Animate().
		Duration(10 * time.Millisecond).
		OnComplete(func() {
			second = reg.Animate().Duration(10 * time.Millisecond).Custom(func(float64) {})
		}).
		Custom(func(float64) {})

	reg.Tick(testEpoch)
	reg.Tick(testEpoch.Add(10 * time.Millisecond))
	if second == nil || reg.Count() != 1 {
		t.Fatalf("Count() = %d, want the follow-up animation", reg.Count())
	}
	if !reg.Tick(testEpoch.Add(15 * time.Millisecond)) {
		t.Error("follow-up animation finished on its first frame")
	}
}

func TestEasingEndpoints(t *testing.T) {
	easings := map[string]EasingFunc{
		"linear":     EaseLinear,
		"out-quad":   EaseOutQuad,
		"out-cubic":  EaseOutCubic,
		"spring":     SpringEasing(0.4, 0.8, 0.33),
		"critical":   SpringEasing(1, 0, 0.33),
		"overdamped": SpringEasing(2, 0, 0.5),
	}
	for name, fn := range easings {
		if got := fn(0); got != 0 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := fn(1); got != 1 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestSpringEasingOvershoots(t *testing.T) {
	tests := []struct {
		name      string
		damping   float64
		velocity  float64
		overshoot bool
	}{
		{name: "underdamped", damping: 0.4, velocity: 0.8, overshoot: true},
		{name: "critical", damping: 1, velocity: 0, overshoot: false},
		{name: "overdamped", damping: 3, velocity: 0, overshoot: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ease := SpringEasing(tt.damping, tt.velocity, 0.33)
			peak := 0.0
			prev := 0.0
			monotonic := true
			for i := 1; i <= 200; i++ {
				v := ease(float64(i) / 200)
				if math.IsNaN(v) {
					t.Fatalf("ease(%v) is NaN", float64(i)/200)
				}
				peak = math.Max(peak, v)
				if v < prev-1e-9 {
					monotonic = false
				}
				prev = v
			}
			if tt.overshoot && peak <= 1.05 {
				t.Errorf("peak = %v, want overshoot past 1.05", peak)
			}
			if !tt.overshoot {
				if peak > 1+1e-3 {
					t.Errorf("peak = %v, want no overshoot", peak)
				}
				if !monotonic {
					t.Error("curve is not monotonic")
				}
			}
		})
	}
}
