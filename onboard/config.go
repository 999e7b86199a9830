package onboard

import (
	"fmt"
	"io/ioutil"

	"github.com/Masterminds/semver"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v2"

	"github.com/CodedInternet/gonao/onboard/hardware"
)

const (
	// CONFIG_VERSION is the range of body file versions this build understands.
	CONFIG_VERSION = "~1.0"

	DRIVER_STATE = "state"
	DRIVER_PID   = "pid"
)

// AgentConfig describes one player: who it is and the body it drives.
type AgentConfig struct {
	Version string
	Team    string
	Number  int
	Scene   string
	Beam    mgl64.Vec3 // x, y, rotation in degrees
	Sync    bool

	MaxSpeed float64
	PID      PIDGains
	Hinges   []HingeConfig
}

type PIDGains struct {
	Kp, Ki, Kd float64
}

type HingeConfig struct {
	Perceptor string
	Effector  string
	Min       float64
	Max       float64
	Driver    string
}

type yamlAgentConfig struct {
	Version  string        `yaml:"version"`
	Team     string        `yaml:"team"`
	Number   int           `yaml:"unum"`
	Scene    string        `yaml:"scene"`
	Beam     []float64     `yaml:"beam,flow"`
	Sync     bool          `yaml:"sync"`
	MaxSpeed float64       `yaml:"max_speed"`
	PID      PIDGains      `yaml:"pid"`
	Hinges   []HingeConfig `yaml:"hinges"`
}

func (c AgentConfig) MarshalYAML() (interface{}, error) {
	return &yamlAgentConfig{
		Version:  c.Version,
		Team:     c.Team,
		Number:   c.Number,
		Scene:    c.Scene,
		Beam:     []float64{c.Beam.X(), c.Beam.Y(), c.Beam.Z()},
		Sync:     c.Sync,
		MaxSpeed: c.MaxSpeed,
		PID:      c.PID,
		Hinges:   c.Hinges,
	}, nil
}

func (c *AgentConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var yc yamlAgentConfig
	if err := unmarshal(&yc); err != nil {
		return err
	}

	switch len(yc.Beam) {
	case 0:
	case 3:
		c.Beam = mgl64.Vec3{yc.Beam[0], yc.Beam[1], yc.Beam[2]}
	default:
		return fmt.Errorf("beam needs x, y and rotation, got %d values", len(yc.Beam))
	}

	c.Version = yc.Version
	c.Team = yc.Team
	c.Number = yc.Number
	c.Scene = yc.Scene
	c.Sync = yc.Sync
	c.MaxSpeed = yc.MaxSpeed
	c.PID = yc.PID
	c.Hinges = yc.Hinges
	return nil
}

// Validate checks the file version and the hinge table.
func (c *AgentConfig) Validate() error {
	semVer, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %v", c.Version, err)
	}
	semVerConstraint, err := semver.NewConstraint(CONFIG_VERSION)
	if err != nil {
		return err
	}
	if !semVerConstraint.Check(semVer) {
		return fmt.Errorf("unable to use config version %s - require %s", c.Version, CONFIG_VERSION)
	}

	if c.Team == "" {
		return fmt.Errorf("team name is required")
	}
	if c.MaxSpeed < 0 {
		return fmt.Errorf("max_speed must not be negative")
	}

	seen := make(map[string]bool, len(c.Hinges)*2)
	for _, h := range c.Hinges {
		if h.Perceptor == "" || h.Effector == "" {
			return fmt.Errorf("hinge needs both a perceptor and an effector name: %+v", h)
		}
		for _, name := range []string{h.Perceptor, h.Effector} {
			if seen[name] {
				return fmt.Errorf("duplicate hinge name %s", name)
			}
			seen[name] = true
		}
		if h.Min > h.Max {
			return fmt.Errorf("hinge %s has min %.2f above max %.2f", h.Perceptor, h.Min, h.Max)
		}
		switch h.Driver {
		case "", DRIVER_STATE, DRIVER_PID:
		default:
			return fmt.Errorf("hinge %s has unknown driver %q", h.Perceptor, h.Driver)
		}
	}
	return nil
}

// newDriver builds the driver the hinge table asks for.
func (c *AgentConfig) newDriver(hc HingeConfig) hardware.Driver {
	h := hardware.NewHinge(hc.Perceptor, hc.Effector, hc.Min, hc.Max)

	if hc.Driver == DRIVER_PID {
		return hardware.NewPIDJoint(h, c.PID.Kp, c.PID.Ki, c.PID.Kd)
	}

	jc := hardware.NewJointController(h)
	if c.MaxSpeed > 0 {
		jc.MaxSpeed = c.MaxSpeed
	}
	return jc
}

func ParseConfig(data []byte) (*AgentConfig, error) {
	config := new(AgentConfig)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to unmarshal yaml: %v", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func LoadConfig(filename string) (*AgentConfig, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read yaml file: %v", err)
	}
	return ParseConfig(data)
}
