package hardware

import (
	"math"

	deverrors "github.com/CodedInternet/gonao/onboard/errors"
)

// Hinge is one rotational degree of freedom of the robot. The server reports
// its angle under PerceptorLabel (hj1) and accepts speeds under
// EffectorLabel (he1).
type Hinge struct {
	PerceptorLabel string
	EffectorLabel  string
	MinAngle       float64
	MaxAngle       float64

	State MotorState
}

func NewHinge(perceptor, effector string, min, max float64) *Hinge {
	return &Hinge{
		PerceptorLabel: perceptor,
		EffectorLabel:  effector,
		MinAngle:       math.Min(min, max),
		MaxAngle:       math.Max(min, max),
	}
}

// Observe records the angle reported in the latest snapshot.
func (h *Hinge) Observe(angle float64) {
	h.State.Current = angle
}

func (h *Hinge) Angle() float64 {
	return h.State.Current
}

func (h *Hinge) Contains(angle float64) bool {
	return angle >= h.MinAngle && angle <= h.MaxAngle
}

func (h *Hinge) checkRange(angle float64) error {
	if !h.Contains(angle) {
		return deverrors.AngleRangeError{
			Joint: h.PerceptorLabel,
			Angle: angle,
			Min:   h.MinAngle,
			Max:   h.MaxAngle,
		}
	}
	return nil
}

// clampSpeed limits speed so that one cycle at it cannot carry the hinge
// from current past either end of its range.
func (h *Hinge) clampSpeed(current, speed float64) float64 {
	projected := current + speed*CycleSeconds
	switch {
	case projected > h.MaxAngle:
		return (h.MaxAngle - current) / CycleSeconds
	case projected < h.MinAngle:
		return (h.MinAngle - current) / CycleSeconds
	}
	return speed
}
