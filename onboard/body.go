package onboard

import (
	"github.com/CodedInternet/gonao/onboard/effector"
	deverrors "github.com/CodedInternet/gonao/onboard/errors"
	"github.com/CodedInternet/gonao/onboard/hardware"
	"github.com/CodedInternet/gonao/onboard/perceptor"
)

// Body is the set of hinges an agent drives, in the order of the config file.
type Body struct {
	drivers []hardware.Driver
	byName  map[string]hardware.Driver
}

func NewBody(config *AgentConfig) *Body {
	b := &Body{
		drivers: make([]hardware.Driver, 0, len(config.Hinges)),
		byName:  make(map[string]hardware.Driver, len(config.Hinges)*2),
	}
	for _, hc := range config.Hinges {
		d := config.newDriver(hc)
		b.drivers = append(b.drivers, d)
		b.byName[hc.Perceptor] = d
		b.byName[hc.Effector] = d
	}
	return b
}

// Hinge looks a hinge up by either its perceptor or its effector name.
func (b *Body) Hinge(name string) (*hardware.Hinge, error) {
	d, ok := b.byName[name]
	if !ok {
		return nil, deverrors.JointNameError{Name: name}
	}
	return d.Hinge(), nil
}

func (b *Body) Hinges() []*hardware.Hinge {
	hinges := make([]*hardware.Hinge, len(b.drivers))
	for i, d := range b.drivers {
		hinges[i] = d.Hinge()
	}
	return hinges
}

// Move asks the named hinge to go to angle.
func (b *Body) Move(name string, angle float64) error {
	d, ok := b.byName[name]
	if !ok {
		return deverrors.JointNameError{Name: name}
	}
	return d.RequestMove(angle)
}

// Update copies the hinge angles of a snapshot into the body. Hinges the
// snapshot does not mention keep their last angle.
func (b *Body) Update(snap perceptor.Snapshot) {
	for _, hs := range snap.Hinges {
		if d, ok := b.byName[hs.Label]; ok && d.Hinge().PerceptorLabel == hs.Label {
			d.Hinge().Observe(hs.Angle)
		}
	}
}

// Step runs every hinge driver once and returns the speed commands they
// produced.
func (b *Body) Step(simTime float64) []effector.Command {
	var cmds []effector.Command
	for _, d := range b.drivers {
		if cmd, ok := d.Drive(simTime); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
