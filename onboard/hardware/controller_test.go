package hardware

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	deverrors "github.com/CodedInternet/gonao/onboard/errors"
)

// simulate runs c against an ideal hinge that always ends up exactly where
// the last command would take it. It returns the number of cycles until the
// controller rested, or -1 if it never did within limit.
func simulate(c *JointController, limit int, each func(angle, speed float64)) int {
	h := c.Hinge()
	for i := 1; i <= limit; i++ {
		cmd, ok := c.Step(h.Angle())
		if !ok {
			if c.State() == Resting {
				return i
			}
			continue
		}
		h.Observe(h.Angle() + cmd.Speed*CycleSeconds)
		if each != nil {
			each(h.Angle(), cmd.Speed)
		}
	}
	return -1
}

func TestJointController(t *testing.T) {
	Convey("Given a resting hinge at zero", t, func() {
		h := NewHinge("hj1", "he1", -120, 120)
		c := NewJointController(h)
		c.MaxSpeed = 180

		So(c.State(), ShouldEqual, Resting)

		Convey("resting on target emits nothing", func() {
			_, ok := c.Step(0.5)
			So(ok, ShouldBeFalse)
			So(c.State(), ShouldEqual, Resting)
		})

		Convey("a move to 90 degrees converges", func() {
			So(c.RequestMove(90), ShouldBeNil)
			So(c.State(), ShouldEqual, MovePending)

			maxSpeed := 0.0
			cycles := simulate(c, 200, func(angle, speed float64) {
				maxSpeed = math.Max(maxSpeed, math.Abs(speed))
				So(h.Contains(angle), ShouldBeTrue)
			})

			So(cycles, ShouldBeBetween, 0, 200)
			So(math.Abs(h.Angle()-90), ShouldBeLessThan, Epsilon)
			So(maxSpeed, ShouldBeLessThanOrEqualTo, 180)
			So(h.State.Target, ShouldEqual, 90)
		})

		Convey("the first command is issued on the step after the request", func() {
			c.RequestMove(30)
			cmd, ok := c.Step(0)
			So(ok, ShouldBeTrue)
			So(cmd.Label, ShouldEqual, "he1")
			So(cmd.Speed, ShouldAlmostEqual, 180)
			So(c.State(), ShouldEqual, Moving)
		})

		Convey("moving does not rest while the hinge is still travelling", func() {
			c.RequestMove(10)
			c.Step(0)
			// on target but it moved 9.5 degrees since the last cycle
			_, ok := c.Step(9.5)
			So(ok, ShouldBeTrue)
			So(c.State(), ShouldEqual, Moving)

			_, ok = c.Step(9.8)
			So(ok, ShouldBeFalse)
			So(c.State(), ShouldEqual, Resting)
		})

		Convey("requests within epsilon of the target are ignored", func() {
			So(c.RequestMove(40), ShouldBeNil)
			c.Step(0)
			So(c.State(), ShouldEqual, Moving)

			So(c.RequestMove(40.5), ShouldBeNil)
			So(c.State(), ShouldEqual, Moving)
			So(c.Target(), ShouldEqual, 40)
		})

		Convey("a new request overrides a correction", func() {
			c.Step(10)
			So(c.State(), ShouldEqual, Correcting)

			So(c.RequestMove(-20), ShouldBeNil)
			So(c.State(), ShouldEqual, MovePending)
		})

		Convey("targets outside the range are rejected, not clamped", func() {
			err := c.RequestMove(121)
			So(err, ShouldHaveSameTypeAs, deverrors.AngleRangeError{})
			So(c.Target(), ShouldEqual, 0)
			So(c.State(), ShouldEqual, Resting)

			So(c.RequestMove(-120), ShouldBeNil)
		})

		Convey("speeds are cut so one cycle cannot leave the range", func() {
			h.MaxAngle = 45
			c.MoveTimeConstant = 0.01
			c.MaxSpeed = 360

			c.RequestMove(45)
			cmd, ok := c.Step(40)
			So(ok, ShouldBeTrue)
			So(cmd.Speed, ShouldAlmostEqual, 250)
		})
	})

	Convey("Given a hinge held away from its target", t, func() {
		h := NewHinge("hj3", "he3", -90, 90)
		c := NewJointController(h)
		c.RequestMove(30)
		h.Observe(30)
		simulate(c, 100, nil)
		So(c.State(), ShouldEqual, Resting)

		Convey("a disturbance starts a correction straight away", func() {
			cmd, ok := c.Step(35)
			So(ok, ShouldBeTrue)
			So(c.State(), ShouldEqual, Correcting)
			So(cmd.Speed, ShouldBeLessThan, 0)
		})

		Convey("small disturbances are tolerated", func() {
			_, ok := c.Step(31.5)
			So(ok, ShouldBeFalse)
		})

		Convey("corrections back off as attempts accumulate", func() {
			var speeds []float64
			for i := 0; i < 12; i++ {
				cmd, ok := c.Step(35)
				So(ok, ShouldBeTrue)
				speeds = append(speeds, math.Abs(cmd.Speed))
			}

			for i := 1; i < len(speeds); i++ {
				So(speeds[i], ShouldBeLessThanOrEqualTo, speeds[i-1])
			}
			So(speeds[3], ShouldBeLessThan, speeds[2])
			So(speeds[10], ShouldBeLessThan, speeds[9])

			Convey("and stop once back on target", func() {
				_, ok := c.Step(30.5)
				So(ok, ShouldBeFalse)
				So(c.State(), ShouldEqual, Resting)
			})
		})
	})
}

func TestJointControllerOffsetRange(t *testing.T) {
	Convey("Given a hinge whose range excludes zero", t, func() {
		h := NewHinge("hj9", "he9", 10, 90)
		c := NewJointController(h)

		Convey("the initial target is the nearest end of the range", func() {
			So(c.Target(), ShouldEqual, 10.0)
			So(h.State.Target, ShouldEqual, 10.0)
		})

		Convey("holding at the lower end commands nothing", func() {
			_, ok := c.Step(10)
			So(ok, ShouldBeFalse)
			So(c.State(), ShouldEqual, Resting)
		})

		Convey("corrections never leave the range", func() {
			for _, angle := range []float64{80, 40, 11, 10.5} {
				h.Observe(angle)
				if cmd, ok := c.Step(angle); ok {
					So(h.Contains(angle+cmd.Speed*CycleSeconds), ShouldBeTrue)
				}
			}

			cycles := simulate(c, 200, func(angle, speed float64) {
				So(h.Contains(angle), ShouldBeTrue)
			})
			So(cycles, ShouldBeBetween, 0, 200)
		})
	})
}

func TestCorrectionTimeConstant(t *testing.T) {
	Convey("time constants lengthen in three bands", t, func() {
		So(CorrectionTimeConstant(0), ShouldEqual, CorrectionTimeConstant(2))
		So(CorrectionTimeConstant(3), ShouldBeGreaterThan, CorrectionTimeConstant(2))
		So(CorrectionTimeConstant(10), ShouldBeGreaterThan, CorrectionTimeConstant(9))
		So(CorrectionTimeConstant(1000), ShouldEqual, CorrectionTimeConstant(10))
	})
}
