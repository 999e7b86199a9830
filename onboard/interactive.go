package onboard

import (
	"errors"
	"fmt"

	"github.com/CodedInternet/gonao/onboard/effector"
)

const (
	CMD_MOVE = "move"
	CMD_SAY  = "say"
	CMD_BEAM = "beam"
)

var ERR_QUEUE_FULL = errors.New("instruction queue is full")

// Instruction is an operator request, carried out on the next agent cycle.
// Move uses Name as the joint and Values[0] as the angle, Say uses Name as
// the message and Beam reads x, y and rotation from Values.
type Instruction struct {
	Cmd    string
	Name   string
	Values []float64
}

func (in Instruction) check() error {
	switch in.Cmd {
	case CMD_MOVE:
		if in.Name == "" || len(in.Values) != 1 {
			return fmt.Errorf("move needs a joint and an angle")
		}
	case CMD_SAY:
		_, err := effector.NewSay(in.Name)
		return err
	case CMD_BEAM:
		if len(in.Values) != 3 {
			return fmt.Errorf("beam needs x, y and rotation")
		}
	default:
		return fmt.Errorf("unknown instruction %q", in.Cmd)
	}
	return nil
}

// Interactive is a Behavior driven entirely by submitted instructions.
type Interactive struct {
	queue chan Instruction
}

func NewInteractive(size int) *Interactive {
	return &Interactive{queue: make(chan Instruction, size)}
}

// Submit queues in without blocking. It is safe to call from any goroutine.
func (i *Interactive) Submit(in Instruction) error {
	if err := in.check(); err != nil {
		return err
	}

	select {
	case i.queue <- in:
		return nil
	default:
		return ERR_QUEUE_FULL
	}
}

// Think applies everything queued since the last cycle. Every instruction is
// attempted; the first failure is returned.
func (i *Interactive) Think(c *Cycle) (err error) {
	for {
		select {
		case in := <-i.queue:
			if aerr := i.apply(c, in); aerr != nil && err == nil {
				err = aerr
			}
		default:
			return err
		}
	}
}

func (i *Interactive) apply(c *Cycle, in Instruction) error {
	switch in.Cmd {
	case CMD_MOVE:
		return c.Body.Move(in.Name, in.Values[0])
	case CMD_SAY:
		say, err := effector.NewSay(in.Name)
		if err != nil {
			return err
		}
		c.Send(say)
	case CMD_BEAM:
		c.Send(effector.Beam{X: in.Values[0], Y: in.Values[1], Rotation: in.Values[2]})
	}
	return nil
}
