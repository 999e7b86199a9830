package hardware

import "github.com/CodedInternet/gonao/onboard/effector"

// MotorState is what is known about a hinge motor in the current cycle.
// Angles are in degrees, Speed in degrees per second.
type MotorState struct {
	Target, Current, Speed float64
}

// Driver decides the speed of one hinge each cycle.
type Driver interface {
	// RequestMove sets a new target angle. Targets outside the hinge range
	// are rejected.
	RequestMove(target float64) error
	// Drive returns the speed command for this cycle, if any. simTime is the
	// simulation time of the snapshot the hinge angle came from.
	Drive(simTime float64) (effector.HingeSpeed, bool)
	Hinge() *Hinge
}
