package comms

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/CodedInternet/gonao/onboard"
)

const clientBacklog = 8

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Cmd is an operator command as sent over the monitor socket. Move reads the
// joint from Name and the angle from Value, say sends Name, beam reads x, y
// and rotation from Values.
type Cmd struct {
	Cmd    string
	Name   string
	Value  float64
	Values []float64
}

type Reply struct {
	Error string `json:"error"`
}

// Submitter accepts operator instructions. *onboard.Interactive satisfies it.
type Submitter interface {
	Submit(in onboard.Instruction) error
}

// Conductor keeps the latest agent state and fans it out to the connected
// monitor clients. Commands from clients go to Commands.
type Conductor struct {
	Commands Submitter
	Log      *log.Logger

	mu      sync.Mutex
	state   *StatePayload
	latest  []byte
	clients map[*websocket.Conn]chan []byte
}

func NewConductor(commands Submitter, logger *log.Logger) *Conductor {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Conductor{
		Commands: commands,
		Log:      logger,
		clients:  make(map[*websocket.Conn]chan []byte),
	}
}

// Observe publishes every completed agent cycle.
func (c *Conductor) Observe(cycle *onboard.Cycle) {
	c.Publish(NewStatePayload(cycle))
}

// Publish replaces the current state and queues it for every client. A client
// that has fallen behind misses the update.
func (c *Conductor) Publish(state StatePayload) {
	msg, err := json.Marshal(state)
	if err != nil {
		c.Log.Printf("encoding state: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = &state
	c.latest = msg
	for _, out := range c.clients {
		select {
		case out <- msg:
		default:
		}
	}
}

// State returns the last published state, if any.
func (c *Conductor) State() (StatePayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return StatePayload{}, false
	}
	return *c.state, true
}

func (c *Conductor) ProcessCommand(cmd Cmd) error {
	if c.Commands == nil {
		return errors.New("commands are disabled")
	}

	in := onboard.Instruction{Cmd: cmd.Cmd, Name: cmd.Name}
	switch cmd.Cmd {
	case onboard.CMD_MOVE:
		in.Values = []float64{cmd.Value}
	case onboard.CMD_BEAM:
		in.Values = cmd.Values
	}
	return c.Commands.Submit(in)
}

// StateHandler serves the last published state as JSON.
func (c *Conductor) StateHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := c.State()
	if !ok {
		render.NoContent(w, r)
		return
	}
	render.JSON(w, r, state)
}

// StreamHandler upgrades to a WebSocket that receives every published state
// and may send Cmd messages back.
func (c *Conductor) StreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.Log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	out := c.register(conn)
	defer c.unregister(conn)

	go func() {
		for msg := range out {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Log.Println("write:", err)
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var reply Reply
		var cmd Cmd
		if err := json.Unmarshal(msg, &cmd); err != nil {
			reply.Error = "invalid json"
		} else if err := c.ProcessCommand(cmd); err != nil {
			reply.Error = err.Error()
		} else {
			continue
		}

		data, _ := json.Marshal(reply)
		c.mu.Lock()
		select {
		case out <- data:
		default:
		}
		c.mu.Unlock()
	}
}

// register adds a client and queues the current state for it straight away.
func (c *Conductor) register(conn *websocket.Conn) chan []byte {
	out := make(chan []byte, clientBacklog)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[conn] = out
	if c.latest != nil {
		out <- c.latest
	}
	return out
}

func (c *Conductor) unregister(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if out, ok := c.clients[conn]; ok {
		delete(c.clients, conn)
		close(out)
	}
}
