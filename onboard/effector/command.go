package effector

import (
	"bytes"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	deverrors "github.com/CodedInternet/gonao/onboard/errors"
)

// MaxMessageLength is the longest text the server relays for a say command.
const MaxMessageLength = 20

// Command is a single effector expression sent to the server.
type Command interface {
	// AppendTo writes the expression to buf.
	AppendTo(buf *bytes.Buffer)
}

func appendFloat(buf *bytes.Buffer, v float64) {
	buf.WriteByte(' ')
	buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}

// Scene asks the server to load the robot model at Path. It must be the first
// command an agent sends.
type Scene struct {
	Path string
}

func (c Scene) AppendTo(buf *bytes.Buffer) {
	buf.WriteString("(scene ")
	buf.WriteString(c.Path)
	buf.WriteByte(')')
}

// Init registers the agent with a team and uniform number. Number 0 lets the
// server pick one.
type Init struct {
	Number   int
	TeamName string
}

func (c Init) AppendTo(buf *bytes.Buffer) {
	buf.WriteString("(init (unum ")
	buf.WriteString(strconv.Itoa(c.Number))
	buf.WriteString(")(teamname ")
	buf.WriteString(c.TeamName)
	buf.WriteString("))")
}

// Beam places the agent on its own half before kick off. Rotation is in
// degrees.
type Beam struct {
	X, Y     float64
	Rotation float64
}

// NewBeam builds a beam from an (x, y, rotation) pose.
func NewBeam(pose mgl64.Vec3) Beam {
	return Beam{X: pose.X(), Y: pose.Y(), Rotation: pose.Z()}
}

func (c Beam) AppendTo(buf *bytes.Buffer) {
	buf.WriteString("(beam")
	appendFloat(buf, c.X)
	appendFloat(buf, c.Y)
	appendFloat(buf, c.Rotation)
	buf.WriteByte(')')
}

type Say struct {
	message string
}

// NewSay validates msg before wrapping it. Use IsValidMessage to check first
// if a failure is not a programming error.
func NewSay(msg string) (Say, error) {
	if reason := messageProblem(msg); reason != "" {
		return Say{}, deverrors.MessageError{Message: msg, Reason: reason}
	}
	return Say{message: msg}, nil
}

func (c Say) Message() string {
	return c.message
}

func (c Say) AppendTo(buf *bytes.Buffer) {
	buf.WriteString("(say ")
	buf.WriteString(c.message)
	buf.WriteByte(')')
}

// IsValidMessage reports whether msg can be sent with a say command: 1 to 20
// printable ASCII characters, with no spaces or parentheses.
func IsValidMessage(msg string) bool {
	return messageProblem(msg) == ""
}

func messageProblem(msg string) string {
	switch {
	case len(msg) == 0:
		return "empty"
	case len(msg) > MaxMessageLength:
		return "longer than " + strconv.Itoa(MaxMessageLength) + " characters"
	}
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c <= ' ' || c > '~' || c == '(' || c == ')' {
			return "character " + strconv.Quote(string(c)) + " not allowed"
		}
	}
	return ""
}

// HingeSpeed drives a hinge joint at Speed degrees per second. Label is the
// effector name, not the perceptor one.
type HingeSpeed struct {
	Label string
	Speed float64
}

func (c HingeSpeed) AppendTo(buf *bytes.Buffer) {
	buf.WriteByte('(')
	buf.WriteString(c.Label)
	appendFloat(buf, c.Speed)
	buf.WriteByte(')')
}

// UniversalSpeed drives both axes of a universal joint.
type UniversalSpeed struct {
	Label          string
	Speed1, Speed2 float64
}

func (c UniversalSpeed) AppendTo(buf *bytes.Buffer) {
	buf.WriteByte('(')
	buf.WriteString(c.Label)
	appendFloat(buf, c.Speed1)
	appendFloat(buf, c.Speed2)
	buf.WriteByte(')')
}

// Synchronise ends a cycle when the server runs in sync mode.
type Synchronise struct{}

func (Synchronise) AppendTo(buf *bytes.Buffer) {
	buf.WriteString("(syn)")
}

// Encode concatenates cmds into one message payload.
func Encode(cmds ...Command) []byte {
	var buf bytes.Buffer
	for _, c := range cmds {
		c.AppendTo(&buf)
	}
	return buf.Bytes()
}

// String renders a single command, mostly for logs.
func String(c Command) string {
	return string(Encode(c))
}
