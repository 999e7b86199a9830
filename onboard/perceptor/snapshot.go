package perceptor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Polar is a bearing as reported by the vision perceptor. Angles are in degrees.
type Polar struct {
	Distance   float64
	Horizontal float64
	Vertical   float64
}

type GyroState struct {
	Label string
	Rate  mgl64.Vec3 // degrees per second about x, y and z
}

type AccelerometerState struct {
	Label        string
	Acceleration mgl64.Vec3
}

// HingeState is the angle of a single axis joint in degrees.
type HingeState struct {
	Label string
	Angle float64
}

type UniversalJointState struct {
	Label          string
	Angle1, Angle2 float64
}

type TouchState struct {
	Label    string
	Touching bool
}

// ForceState is a force resistance reading. Point is the centre of pressure
// relative to the sensor body.
type ForceState struct {
	Label string
	Point mgl64.Vec3
	Force mgl64.Vec3
}

type LandmarkSighting struct {
	Landmark Landmark
	Bearing  Polar
}

type BodyPartSighting struct {
	Label   string
	Bearing Polar
}

type PlayerSighting struct {
	TeamName   string
	Number     int
	IsTeammate bool
	Parts      []BodyPartSighting
}

// HeardMessage is a message received through the hear perceptor. Direction is
// NaN when the message was said by this agent.
type HeardMessage struct {
	Time      float64
	Direction float64
	Text      string
}

func (m HeardMessage) IsFromSelf() bool {
	return math.IsNaN(m.Direction)
}

// Snapshot is one fully decoded perceptor message. Snapshots are values: the
// parser builds a new one per message and nothing mutates it afterwards.
// Optional scalars are nil when the message did not carry them; collections
// keep the order in which their expressions arrived.
type Snapshot struct {
	SimulationTime *float64
	GameTime       *float64
	PlayMode       PlayMode
	Side           FieldSide
	PlayerNumber   *int

	Gyros           []GyroState
	Accelerometers  []AccelerometerState
	Hinges          []HingeState
	UniversalJoints []UniversalJointState
	Touches         []TouchState
	Forces          []ForceState

	Landmarks []LandmarkSighting
	Ball      *Polar
	Teammates []PlayerSighting
	Opponents []PlayerSighting

	Temperature *float64
	Battery     *float64

	Messages []HeardMessage
}

// Hinge returns the reading for the hinge with the given perceptor label.
func (s Snapshot) Hinge(label string) (HingeState, bool) {
	for _, h := range s.Hinges {
		if h.Label == label {
			return h, true
		}
	}
	return HingeState{}, false
}

// HasGameState reports whether a GS expression was present.
func (s Snapshot) HasGameState() bool {
	return s.GameTime != nil || s.PlayMode != PlayModeUnknown || s.Side != SideUnknown || s.PlayerNumber != nil
}

// Landmark returns the bearing to the given landmark when it was seen.
func (s Snapshot) Landmark(l Landmark) (Polar, bool) {
	for _, ls := range s.Landmarks {
		if ls.Landmark == l {
			return ls.Bearing, true
		}
	}
	return Polar{}, false
}
