package comms

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/CodedInternet/gonao/calcs"
	"github.com/CodedInternet/gonao/onboard"
	"github.com/CodedInternet/gonao/onboard/perceptor"
)

// Position is camera relative, in metres.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func newPosition(v mgl64.Vec3) *Position {
	return &Position{X: v[0], Y: v[1], Z: v[2]}
}

type JointPayload struct {
	Label  string  `json:"label"`
	Angle  float64 `json:"angle"`
	Target float64 `json:"target"`
	Speed  float64 `json:"speed"`
}

type LandmarkPayload struct {
	Label    string    `json:"label"`
	Position *Position `json:"position"`
}

type PlayerPayload struct {
	Team     string    `json:"team"`
	Number   int       `json:"number"`
	Teammate bool      `json:"teammate"`
	Position *Position `json:"position,omitempty"`
}

type StatePayload struct {
	Cycle          int               `json:"cycle"`
	SimulationTime float64           `json:"simulation_time"`
	GameTime       *float64          `json:"game_time,omitempty"`
	PlayMode       string            `json:"play_mode"`
	Joints         []JointPayload    `json:"joints"`
	Landmarks      []LandmarkPayload `json:"landmarks"`
	Ball           *Position         `json:"ball,omitempty"`
	Players        []PlayerPayload   `json:"players"`
	Heard          []string          `json:"heard"`
	Errors         []string          `json:"errors"`
}

// NewStatePayload copies what an operator wants to see out of a cycle. The
// result shares nothing with c.
func NewStatePayload(c *onboard.Cycle) StatePayload {
	snap := c.Snapshot
	p := StatePayload{
		Cycle:          c.Number,
		SimulationTime: c.SimulationTime,
		PlayMode:       snap.PlayMode.String(),
		Joints:         []JointPayload{},
		Landmarks:      make([]LandmarkPayload, 0, len(snap.Landmarks)),
		Players:        []PlayerPayload{},
		Heard:          make([]string, 0, len(snap.Messages)),
		Errors:         make([]string, 0, len(c.Errors)),
	}
	if snap.GameTime != nil {
		gt := *snap.GameTime
		p.GameTime = &gt
	}

	if c.Body != nil {
		for _, h := range c.Body.Hinges() {
			p.Joints = append(p.Joints, JointPayload{
				Label:  h.PerceptorLabel,
				Angle:  h.Angle(),
				Target: h.State.Target,
				Speed:  h.State.Speed,
			})
		}
	}

	for _, l := range snap.Landmarks {
		p.Landmarks = append(p.Landmarks, LandmarkPayload{
			Label:    l.Landmark.String(),
			Position: newPosition(calcs.PolarToCartesian(l.Bearing)),
		})
	}
	if snap.Ball != nil {
		p.Ball = newPosition(calcs.PolarToCartesian(*snap.Ball))
	}

	addPlayers := func(sightings []perceptor.PlayerSighting) {
		for _, ps := range sightings {
			pp := PlayerPayload{Team: ps.TeamName, Number: ps.Number, Teammate: ps.IsTeammate}
			if pos, ok := calcs.PlayerPosition(ps); ok {
				pp.Position = newPosition(pos)
			}
			p.Players = append(p.Players, pp)
		}
	}
	addPlayers(snap.Teammates)
	addPlayers(snap.Opponents)

	for _, m := range snap.Messages {
		p.Heard = append(p.Heard, m.Text)
	}
	for _, e := range c.Errors {
		p.Errors = append(p.Errors, e.Error())
	}

	return p
}
