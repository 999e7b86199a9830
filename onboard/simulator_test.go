package onboard

import (
	"net"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CodedInternet/gonao/onboard/wire"
)

// simulate plays the server side of a connection: it answers the scene
// command, then sends each cycle after hearing from the agent.
func simulate(ln net.Listener, cycles []string, received chan<- string) {
	defer close(received)

	c, err := ln.Accept()
	if err != nil {
		return
	}
	conn := wire.NewConn(c)
	defer conn.Close()

	replies := append([]string{"(time (now 0.00))"}, cycles...)
	for _, reply := range replies {
		msg, err := conn.ReadFrame(2 * time.Second)
		if err != nil {
			return
		}
		received <- string(msg)
		if err := conn.WriteFrame([]byte(reply)); err != nil {
			return
		}
	}

	if msg, err := conn.ReadFrame(2 * time.Second); err == nil {
		received <- string(msg)
	}
}

func TestAgentOverTCP(t *testing.T) {
	Convey("Given a simulator on a loopback socket", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		defer ln.Close()

		received := make(chan string, 8)
		go simulate(ln, []string{kickOffCycle}, received)

		conn, err := wire.Dial(ln.Addr().String(), time.Second)
		So(err, ShouldBeNil)
		defer conn.Close()

		agent := NewAgent(conn, testConfig(), nil, nil)
		agent.ReadTimeout = 2 * time.Second

		Convey("the agent registers and answers its first cycle", func() {
			So(agent.Connect(), ShouldBeNil)
			So(agent.Step(), ShouldBeNil)

			So(<-received, ShouldEqual, "(scene rsg/agent/nao/nao.rsg)")
			So(<-received, ShouldEqual, "(init (unum 7)(teamname Dragons))")
			So(<-received, ShouldEqual, "(he2 0)(beam -6 0.5 90)")
		})
	})
}
