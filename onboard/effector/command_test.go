package effector

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/smartystreets/goconvey/convey"

	deverrors "github.com/CodedInternet/gonao/onboard/errors"
)

func TestIsValidMessage(t *testing.T) {
	Convey("message length boundaries", t, func() {
		So(IsValidMessage(""), ShouldBeFalse)
		So(IsValidMessage("a"), ShouldBeTrue)
		So(IsValidMessage(strings.Repeat("x", 20)), ShouldBeTrue)
		So(IsValidMessage(strings.Repeat("x", 21)), ShouldBeFalse)
	})

	Convey("disallowed characters", t, func() {
		for _, msg := range []string{"a b", "(ab", "ab)", "tab\t", "caf\xc3\xa9", "del\x7f", "nul\x00"} {
			So(IsValidMessage(msg), ShouldBeFalse)
		}
	})

	Convey("the rest of printable ASCII is allowed", t, func() {
		So(IsValidMessage("!\"#$%&'*+,-./0123"), ShouldBeTrue)
		So(IsValidMessage("~}|{`_^]\\[@?>=<;:"), ShouldBeTrue)
	})
}

func TestCommands(t *testing.T) {
	Convey("each command renders its server expression", t, func() {
		So(String(Scene{Path: "rsg/agent/nao/nao.rsg"}), ShouldEqual, "(scene rsg/agent/nao/nao.rsg)")
		So(String(Init{Number: 7, TeamName: "Dragons"}), ShouldEqual, "(init (unum 7)(teamname Dragons))")
		So(String(Beam{X: -6, Y: 0.5, Rotation: 90}), ShouldEqual, "(beam -6 0.5 90)")
		So(String(HingeSpeed{Label: "he1", Speed: -12.25}), ShouldEqual, "(he1 -12.25)")
		So(String(UniversalSpeed{Label: "lae1_2", Speed1: 1, Speed2: 0}), ShouldEqual, "(lae1_2 1 0)")
		So(String(Synchronise{}), ShouldEqual, "(syn)")
	})

	Convey("a beam can come from a pose vector", t, func() {
		So(NewBeam(mgl64.Vec3{-3, 1, 45}), ShouldResemble, Beam{X: -3, Y: 1, Rotation: 45})
	})

	Convey("say validates its message", t, func() {
		say, err := NewSay("ready")
		So(err, ShouldBeNil)
		So(String(say), ShouldEqual, "(say ready)")

		_, err = NewSay("two words")
		So(err, ShouldHaveSameTypeAs, deverrors.MessageError{})
		So(err.Error(), ShouldContainSubstring, "not allowed")
	})

	Convey("commands are concatenated into one payload", t, func() {
		payload := Encode(HingeSpeed{Label: "he1", Speed: 1}, HingeSpeed{Label: "he2", Speed: 2}, Synchronise{})
		So(string(payload), ShouldEqual, "(he1 1)(he2 2)(syn)")
		So(Encode(), ShouldBeEmpty)
	})
}
