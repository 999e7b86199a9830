package perceptor

type PlayMode int

const (
	PlayModeUnknown PlayMode = iota
	BeforeKickOff
	KickOffLeft
	KickOffRight
	PlayOn
	KickInLeft
	KickInRight
	CornerKickLeft
	CornerKickRight
	GoalKickLeft
	GoalKickRight
	OffsideLeft
	OffsideRight
	GameOver
	GoalLeft
	GoalRight
	FreeKickLeft
	FreeKickRight
	DirectFreeKickLeft
	DirectFreeKickRight
	PassLeft
	PassRight
)

// names as sent by the server
var playModeNames = map[string]PlayMode{
	"BeforeKickOff":          BeforeKickOff,
	"KickOff_Left":           KickOffLeft,
	"KickOff_Right":          KickOffRight,
	"PlayOn":                 PlayOn,
	"KickIn_Left":            KickInLeft,
	"KickIn_Right":           KickInRight,
	"corner_kick_left":       CornerKickLeft,
	"corner_kick_right":      CornerKickRight,
	"goal_kick_left":         GoalKickLeft,
	"goal_kick_right":        GoalKickRight,
	"offside_left":           OffsideLeft,
	"offside_right":          OffsideRight,
	"GameOver":               GameOver,
	"Goal_Left":              GoalLeft,
	"Goal_Right":             GoalRight,
	"free_kick_left":         FreeKickLeft,
	"free_kick_right":        FreeKickRight,
	"direct_free_kick_left":  DirectFreeKickLeft,
	"direct_free_kick_right": DirectFreeKickRight,
	"pass_left":              PassLeft,
	"pass_right":             PassRight,
}

// ParsePlayMode maps a server play mode name onto a PlayMode.
func ParsePlayMode(name string) (PlayMode, bool) {
	pm, ok := playModeNames[name]
	return pm, ok
}

func (pm PlayMode) String() string {
	for name, mode := range playModeNames {
		if mode == pm {
			return name
		}
	}
	return "Unknown"
}

type FieldSide int

const (
	SideUnknown FieldSide = iota
	SideLeft
	SideRight
)

func (s FieldSide) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Landmark identifies one of the fixed flags and goal posts on the field.
type Landmark int

const (
	FlagLeftTop Landmark = iota + 1
	FlagLeftBottom
	FlagRightTop
	FlagRightBottom
	GoalLeftTop
	GoalLeftBottom
	GoalRightTop
	GoalRightBottom
)

var landmarkTags = map[string]Landmark{
	"F1L": FlagLeftTop,
	"F2L": FlagLeftBottom,
	"F1R": FlagRightTop,
	"F2R": FlagRightBottom,
	"G1L": GoalLeftTop,
	"G2L": GoalLeftBottom,
	"G1R": GoalRightTop,
	"G2R": GoalRightBottom,
}

// BallTag is the see tag used for the ball.
const BallTag = "B"

// ParseLandmark maps a three letter see tag onto a Landmark.
func ParseLandmark(tag string) (Landmark, bool) {
	l, ok := landmarkTags[tag]
	return l, ok
}

func (l Landmark) String() string {
	for tag, lm := range landmarkTags {
		if lm == l {
			return tag
		}
	}
	return "?"
}
