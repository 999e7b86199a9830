package parser

import (
	"github.com/CodedInternet/gonao/onboard/perceptor"
)

// builder accumulates the fields of one snapshot while a message is parsed.
// Productions receive it explicitly; nothing else holds on to it.
type builder struct {
	snap perceptor.Snapshot
}

func (b *builder) simulationTime(t float64) {
	b.snap.SimulationTime = &t
}

func (b *builder) gameTime(t float64) {
	b.snap.GameTime = &t
}

func (b *builder) playerNumber(n int) {
	b.snap.PlayerNumber = &n
}

func (b *builder) temperature(v float64) {
	b.snap.Temperature = &v
}

func (b *builder) battery(v float64) {
	b.snap.Battery = &v
}

func (b *builder) ball(p perceptor.Polar) {
	b.snap.Ball = &p
}

func (b *builder) player(p perceptor.PlayerSighting) {
	if p.IsTeammate {
		b.snap.Teammates = append(b.snap.Teammates, p)
	} else {
		b.snap.Opponents = append(b.snap.Opponents, p)
	}
}

// build hands the accumulated snapshot over and resets the builder.
func (b *builder) build() perceptor.Snapshot {
	s := b.snap
	b.snap = perceptor.Snapshot{}
	return s
}
