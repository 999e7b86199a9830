package main

import (
	"encoding/json"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/asdine/storm/v3"
	"github.com/pkg/errors"

	"github.com/CodedInternet/gonao/comms"
	. "github.com/CodedInternet/gonao/onboard"
)

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		values[i] = v
	}
	return values, nil
}

// newShell builds the development shell. Robot commands are queued on
// operator and carried out on the next agent cycle.
func newShell(config *AgentConfig, operator *Interactive, conductor *comms.Conductor, db *storm.DB) *ishell.Shell {
	jointNames := func([]string) []string {
		names := make([]string, 0, len(config.Hinges))
		for _, hc := range config.Hinges {
			names = append(names, hc.Perceptor)
		}
		return names
	}

	submit := func(c *ishell.Context, in Instruction) {
		if err := operator.Submit(in); err != nil {
			c.Err(err)
		}
	}

	shell := ishell.New()
	shell.Println("Agent development shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "addoperator",
		Help: "addoperator <email> <password>",
		Func: func(c *ishell.Context) {
			// disable the '>>>' for cleaner same line input.
			c.ShowPrompt(false)
			defer c.ShowPrompt(true) // yes, revert when done.

			var email string
			if len(c.Args) >= 1 {
				email = c.Args[0]
			} else {
				c.Print("Email: ")
				email = c.ReadLine()
			}

			var password string
			if len(c.Args) >= 2 {
				password = c.Args[1]
			} else {
				c.Print("Password: ")
				password = c.ReadPassword()
			}

			if err := addOperator(db, email, password); err != nil {
				c.Err(err)
				return
			}
			c.Println("Operator added")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "move",
		Completer: jointNames,
		Help:      "move <joint> <degrees>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errors.New("Usage: move <joint> <degrees>"))
				return
			}
			values, err := parseFloats(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("Moving %s to %.1f\n", c.Args[0], values[0])
			submit(c, Instruction{Cmd: CMD_MOVE, Name: c.Args[0], Values: values})
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "say",
		Help: "say <message>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("Usage: say <message>"))
				return
			}
			submit(c, Instruction{Cmd: CMD_SAY, Name: c.Args[0]})
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "beam",
		Help: "beam <x> <y> <rotation>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Err(errors.New("Usage: beam <x> <y> <rotation>"))
				return
			}
			values, err := parseFloats(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			submit(c, Instruction{Cmd: CMD_BEAM, Values: values})
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "state",
		Help: "Prints the state of the last cycle",
		Func: func(c *ishell.Context) {
			state, ok := conductor.State()
			if !ok {
				c.Println("No cycles yet")
				return
			}
			out, _ := json.MarshalIndent(state, "", "  ")
			c.Println(string(out))
		},
	})

	return shell
}
