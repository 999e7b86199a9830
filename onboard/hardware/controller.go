package hardware

import (
	"math"

	"github.com/CodedInternet/gonao/onboard/effector"
)

const (
	// Epsilon is the angular tolerance, in degrees, below which a hinge is
	// considered to be on target.
	Epsilon = 1.0

	// CycleSeconds is the length of one server cycle.
	CycleSeconds = 0.02

	DefaultMaxSpeed         = 360.0
	DefaultMoveTimeConstant = 0.1
)

type ControlState int

const (
	Resting ControlState = iota
	MovePending
	Moving
	Correcting
)

func (s ControlState) String() string {
	switch s {
	case Resting:
		return "resting"
	case MovePending:
		return "move pending"
	case Moving:
		return "moving"
	case Correcting:
		return "correcting"
	}
	return "unknown"
}

// CorrectionTimeConstant is the divisor applied to the error on the given
// correction attempt. It grows in steps so that a hinge being pushed around
// is corrected quickly at first and then ever more gently.
func CorrectionTimeConstant(attempt int) float64 {
	switch {
	case attempt < 3:
		return 0.04
	case attempt < 10:
		return 0.1
	default:
		return 0.3
	}
}

// JointController moves one hinge to a target angle and holds it there.
type JointController struct {
	hinge *Hinge

	// MaxSpeed caps the commanded speed while moving, in degrees per second.
	MaxSpeed float64
	// MoveTimeConstant is the divisor applied to the error while moving.
	MoveTimeConstant float64

	state    ControlState
	target   float64
	attempts int

	last float64
	seen bool
}

// NewJointController holds h at the zero pose, or at the end of its range
// nearest to zero when the range does not include it.
func NewJointController(h *Hinge) *JointController {
	target := math.Max(h.MinAngle, math.Min(h.MaxAngle, 0))
	h.State.Target = target

	return &JointController{
		hinge:            h,
		MaxSpeed:         DefaultMaxSpeed,
		MoveTimeConstant: DefaultMoveTimeConstant,
		target:           target,
	}
}

func (c *JointController) Hinge() *Hinge {
	return c.hinge
}

func (c *JointController) State() ControlState {
	return c.state
}

func (c *JointController) Target() float64 {
	return c.target
}

// RequestMove starts a move to target, interrupting whatever the controller
// was doing. A target within Epsilon of the current one changes nothing.
func (c *JointController) RequestMove(target float64) error {
	if err := c.hinge.checkRange(target); err != nil {
		return err
	}
	if math.Abs(target-c.target) < Epsilon {
		return nil
	}

	c.target = target
	c.hinge.State.Target = target
	c.state = MovePending
	return nil
}

func (c *JointController) Drive(simTime float64) (effector.HingeSpeed, bool) {
	return c.Step(c.hinge.Angle())
}

// Step advances the controller with the angle observed this cycle and
// returns the speed to command, if any.
func (c *JointController) Step(current float64) (effector.HingeSpeed, bool) {
	moved := 0.0
	if c.seen {
		moved = math.Abs(c.last - current)
	}
	c.last, c.seen = current, true

	speed, ok := c.step(current, moved)
	if !ok {
		return effector.HingeSpeed{}, false
	}
	c.hinge.State.Speed = speed
	return effector.HingeSpeed{Label: c.hinge.EffectorLabel, Speed: speed}, true
}

func (c *JointController) step(current, moved float64) (float64, bool) {
	err := c.target - current

	switch c.state {
	case Resting:
		if math.Abs(err) > 2*Epsilon {
			c.state = Correcting
			c.attempts = 0
			return c.step(current, moved)
		}
		return 0, false

	case Correcting:
		if math.Abs(err) < Epsilon {
			c.state = Resting
			return 0, false
		}
		speed := err / CorrectionTimeConstant(c.attempts)
		c.attempts++
		return c.hinge.clampSpeed(current, speed), true

	case MovePending:
		c.state = Moving
		return c.step(current, moved)

	case Moving:
		if math.Abs(err) <= Epsilon && moved <= Epsilon {
			c.state = Resting
			return 0, false
		}
		speed := err / c.MoveTimeConstant
		speed = math.Max(-c.MaxSpeed, math.Min(c.MaxSpeed, speed))
		return c.hinge.clampSpeed(current, speed), true
	}

	return 0, false
}
