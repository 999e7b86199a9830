package onboard

import (
	"context"
	"io/ioutil"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/ttacon/chalk"

	"github.com/CodedInternet/gonao/onboard/effector"
	"github.com/CodedInternet/gonao/onboard/hardware"
	"github.com/CodedInternet/gonao/onboard/parser"
	"github.com/CodedInternet/gonao/onboard/perceptor"
	"github.com/CodedInternet/gonao/onboard/wire"
	"github.com/CodedInternet/gonao/recording"
)

const DEFAULT_READ_TIMEOUT = 100 * time.Millisecond

// Conn is the frame transport to the server. *wire.Conn satisfies it.
type Conn interface {
	ReadFrame(timeout time.Duration) ([]byte, error)
	WriteFrame(payload []byte) error
}

// Behavior decides what the agent does each cycle, after the hinge drivers
// have run. Commands are queued with Cycle.Send and hinge targets changed
// through Cycle.Body.
type Behavior interface {
	Think(c *Cycle) error
}

type BehaviorFunc func(c *Cycle) error

func (f BehaviorFunc) Think(c *Cycle) error {
	return f(c)
}

// Capabilities lists the optional parts of a behavior. Leave a field nil when
// the behavior has no use for it.
type Capabilities struct {
	// Dispose is called once when Run returns.
	Dispose func() error
	// Interact runs in its own goroutine for as long as Run does, feeding
	// operator input to the behavior.
	Interact func(ctx context.Context) error
}

// Observer is told about every completed cycle. It is called on the agent
// goroutine and must not hold on to the cycle.
type Observer interface {
	Observe(c *Cycle)
}

// Cycle is one read, think, write round trip.
type Cycle struct {
	Number         int
	SimulationTime float64
	Payload        []byte
	Snapshot       perceptor.Snapshot
	Errors         parser.ErrorList
	Body           *Body

	sent []effector.Command
}

func (c *Cycle) Send(cmds ...effector.Command) {
	c.sent = append(c.sent, cmds...)
}

// Sent returns everything queued for this cycle so far.
func (c *Cycle) Sent() []effector.Command {
	return c.sent
}

// Agent runs one player against the server.
type Agent struct {
	Config       *AgentConfig
	Body         *Body
	Behavior     Behavior
	Capabilities Capabilities
	Recorder     recording.Recorder
	Observers    []Observer
	ReadTimeout  time.Duration
	Log          *log.Logger

	conn     Conn
	parser   parser.Parser
	cycle    int
	simTime  float64
	lastMode perceptor.PlayMode
}

func NewAgent(conn Conn, config *AgentConfig, behavior Behavior, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	return &Agent{
		Config:      config,
		Body:        NewBody(config),
		Behavior:    behavior,
		Recorder:    recording.MakeEmptyRecorder(),
		ReadTimeout: DEFAULT_READ_TIMEOUT,
		Log:         logger,
		conn:        conn,
		parser:      parser.Parser{TeamName: config.Team},
	}
}

func (a *Agent) warnf(format string, args ...interface{}) {
	a.Log.Printf("%s"+format+"%s", append(append([]interface{}{chalk.Yellow}, args...), chalk.Reset)...)
}

// Connect loads the robot model and registers the player. The server answers
// the scene command with one message before it accepts init.
func (a *Agent) Connect() error {
	if err := a.send(effector.Scene{Path: a.Config.Scene}); err != nil {
		return err
	}
	if _, err := a.conn.ReadFrame(a.ReadTimeout); err != nil && err != wire.ErrNoData {
		return errors.Wrap(err, "waiting for scene")
	}

	reg := effector.Init{Number: a.Config.Number, TeamName: a.Config.Team}
	if err := a.send(reg); err != nil {
		return err
	}
	a.Log.Printf("sent %s", effector.String(reg))
	return nil
}

func (a *Agent) send(cmds ...effector.Command) error {
	return errors.Wrap(a.conn.WriteFrame(effector.Encode(cmds...)), "sending commands")
}

// Run connects and then cycles until ctx is done or the connection fails.
func (a *Agent) Run(ctx context.Context) (err error) {
	if a.Capabilities.Dispose != nil {
		defer func() {
			if derr := a.Capabilities.Dispose(); derr != nil && err == nil {
				err = derr
			}
		}()
	}
	defer a.Recorder.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err = a.Connect(); err != nil {
		return err
	}

	if a.Capabilities.Interact != nil {
		go func() {
			if err := a.Capabilities.Interact(ctx); err != nil {
				a.warnf("interaction stopped: %v", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err = a.Step(); err != nil {
			return err
		}
	}
}

// Step runs a single cycle. A cycle with nothing to read is skipped.
func (a *Agent) Step() error {
	payload, err := a.conn.ReadFrame(a.ReadTimeout)
	if err == wire.ErrNoData {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading perceptors")
	}

	a.cycle++
	snap, errs := a.parser.ParseBytes(payload)
	if len(errs) > 0 {
		a.warnf("cycle %d: %v", a.cycle, errs)
	}

	if snap.SimulationTime != nil {
		a.simTime = *snap.SimulationTime
	} else {
		a.simTime += hardware.CycleSeconds
	}

	a.Body.Update(snap)
	c := &Cycle{
		Number:         a.cycle,
		SimulationTime: a.simTime,
		Payload:        payload,
		Snapshot:       snap,
		Errors:         errs,
		Body:           a.Body,
	}
	c.Send(a.Body.Step(a.simTime)...)

	if snap.HasGameState() {
		if a.shouldBeam(snap.PlayMode) {
			c.Send(effector.NewBeam(a.Config.Beam))
		}
		a.lastMode = snap.PlayMode
	}

	if a.Behavior != nil {
		if err := a.Behavior.Think(c); err != nil {
			a.warnf("cycle %d: behavior: %v", a.cycle, err)
		}
	}

	if a.Config.Sync {
		c.Send(effector.Synchronise{})
	}

	var sent []byte
	if len(c.sent) > 0 {
		sent = effector.Encode(c.sent...)
		if err := a.conn.WriteFrame(sent); err != nil {
			return errors.Wrap(err, "sending commands")
		}
	}

	a.record(c, sent)
	for _, o := range a.Observers {
		o.Observe(c)
	}
	return nil
}

// shouldBeam reports whether the configured start pose should be sent: once
// on entering a play mode in which the server accepts beams.
func (a *Agent) shouldBeam(mode perceptor.PlayMode) bool {
	if mode == a.lastMode {
		return false
	}
	switch mode {
	case perceptor.BeforeKickOff, perceptor.GoalLeft, perceptor.GoalRight:
		return true
	}
	return false
}

func (a *Agent) record(c *Cycle, sent []byte) {
	rec := recording.CycleRecord{
		Cycle:          c.Number,
		SimulationTime: c.SimulationTime,
		Perceived:      string(c.Payload),
		Sent:           string(sent),
	}
	for _, e := range c.Errors {
		rec.Errors = append(rec.Errors, e.Error())
	}

	if err := a.Recorder.Record(rec); err != nil {
		a.warnf("cycle %d: %v", c.Number, err)
	}
}
