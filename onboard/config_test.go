package onboard

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v2"

	"github.com/CodedInternet/gonao/onboard/hardware"
)

const testYaml = `
version: 1.0.2
team: Dragons
unum: 7
scene: rsg/agent/nao/nao.rsg
beam: [-6, 0.5, 90]
max_speed: 180
pid:
  kp: 2
  ki: 0.1
  kd: 0
hinges:
- perceptor: hj1
  effector: he1
  min: -120
  max: 120
- perceptor: hj2
  effector: he2
  min: -45
  max: 45
  driver: pid
`

func TestAgentConfigParsing(t *testing.T) {
	Convey("parsing is successful", t, func() {
		config, err := ParseConfig([]byte(testYaml))
		So(err, ShouldBeNil)

		Convey("player fields are set", func() {
			So(config.Team, ShouldEqual, "Dragons")
			So(config.Number, ShouldEqual, 7)
			So(config.Scene, ShouldEqual, "rsg/agent/nao/nao.rsg")
			So(config.Beam, ShouldResemble, mgl64.Vec3{-6, 0.5, 90})
			So(config.PID, ShouldResemble, PIDGains{Kp: 2, Ki: 0.1})
		})

		Convey("hinges are listed in order", func() {
			So(len(config.Hinges), ShouldEqual, 2)
			So(config.Hinges[0], ShouldResemble, HingeConfig{Perceptor: "hj1", Effector: "he1", Min: -120, Max: 120})
			So(config.Hinges[1].Driver, ShouldEqual, DRIVER_PID)
		})

		Convey("drivers follow the hinge table", func() {
			jc, ok := config.newDriver(config.Hinges[0]).(*hardware.JointController)
			So(ok, ShouldBeTrue)
			So(jc.MaxSpeed, ShouldEqual, 180.0)

			pid, ok := config.newDriver(config.Hinges[1]).(*hardware.PIDJoint)
			So(ok, ShouldBeTrue)
			So(pid.Kp, ShouldEqual, 2.0)
		})

		Convey("it survives a round trip", func() {
			out, err := yaml.Marshal(config)
			So(err, ShouldBeNil)

			again, err := ParseConfig(out)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, config)
		})
	})

	Convey("invalid files are refused", t, func() {
		bad := map[string]string{
			"unsupported version": "version: 2.0.0\nteam: A\n",
			"not a version":       "version: latest\nteam: A\n",
			"missing team":        "version: 1.0.0\n",
			"short beam":          "version: 1.0.0\nteam: A\nbeam: [1, 2]\n",
			"inverted range":      "version: 1.0.0\nteam: A\nhinges:\n- {perceptor: hj1, effector: he1, min: 10, max: -10}\n",
			"duplicate name":      "version: 1.0.0\nteam: A\nhinges:\n- {perceptor: hj1, effector: he1}\n- {perceptor: hj1, effector: he2}\n",
			"unknown driver":      "version: 1.0.0\nteam: A\nhinges:\n- {perceptor: hj1, effector: he1, driver: magic}\n",
		}

		for name, doc := range bad {
			_, err := ParseConfig([]byte(doc))
			So(err, ShouldNotBeNil)
			Printf("%s: %v\n", name, err)
		}
	})

	Convey("a missing file is an error", t, func() {
		_, err := LoadConfig("./does/not/exist.yaml")
		So(err, ShouldNotBeNil)
	})
}
