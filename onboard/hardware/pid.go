package hardware

import (
	"math"

	"github.com/CodedInternet/gonao/onboard/effector"
)

// staleSlack absorbs rounding in simulation times that are one cycle apart.
const staleSlack = 1e-6

// PIDController turns the error between a target and the observed angle into
// a speed. The gains may be changed between calls.
type PIDController struct {
	Kp, Ki, Kd float64

	target        float64
	integral      float64
	previousError float64
	lastTime      float64
	started       bool
}

func (p *PIDController) SetTarget(angle float64) {
	p.target = angle
}

func (p *PIDController) Target() float64 {
	return p.target
}

func (p *PIDController) Integral() float64 {
	return p.integral
}

func (p *PIDController) PreviousError() float64 {
	return p.previousError
}

// ComputeVelocity returns the speed for the current cycle. When more than one
// cycle has passed since the previous call (or this is the first call) the
// accumulated history is dropped and a single cycle is assumed.
func (p *PIDController) ComputeVelocity(angle, simTime float64) float64 {
	dt := simTime - p.lastTime
	if !p.started || dt > CycleSeconds+staleSlack || dt < 0 {
		p.integral = 0
		p.previousError = 0
		dt = CycleSeconds
	}
	p.started = true
	p.lastTime = simTime

	err := p.target - angle
	p.integral += err * dt
	derivative := (err - p.previousError) * dt
	p.previousError = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// PIDJoint drives a hinge with a PIDController.
type PIDJoint struct {
	PIDController
	hinge *Hinge
}

func NewPIDJoint(h *Hinge, kp, ki, kd float64) *PIDJoint {
	j := &PIDJoint{
		PIDController: PIDController{Kp: kp, Ki: ki, Kd: kd},
		hinge:         h,
	}
	j.SetTarget(math.Max(h.MinAngle, math.Min(h.MaxAngle, 0)))
	h.State.Target = j.Target()
	return j
}

func (j *PIDJoint) Hinge() *Hinge {
	return j.hinge
}

func (j *PIDJoint) RequestMove(target float64) error {
	if err := j.hinge.checkRange(target); err != nil {
		return err
	}
	j.SetTarget(target)
	j.hinge.State.Target = target
	return nil
}

func (j *PIDJoint) Drive(simTime float64) (effector.HingeSpeed, bool) {
	speed := j.hinge.clampSpeed(j.hinge.Angle(), j.ComputeVelocity(j.hinge.Angle(), simTime))
	j.hinge.State.Speed = speed
	return effector.HingeSpeed{Label: j.hinge.EffectorLabel, Speed: speed}, true
}
