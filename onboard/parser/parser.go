package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/CodedInternet/gonao/onboard/perceptor"
)

// errors closer together than this many tokens are not reported, only the
// first one of a cascade is useful
const minErrDist = 2

// Parser decodes perceptor messages. It holds configuration only, so a single
// value can be shared between goroutines.
type Parser struct {
	// TeamName classifies seen players as teammates by exact match.
	TeamName string
}

func (p Parser) ParseBytes(payload []byte) (perceptor.Snapshot, ErrorList) {
	return p.Parse(NewBufferSource(payload))
}

// Parse reads one message from src. A snapshot is always returned, built
// from whatever could be decoded; the error list says what could not.
func (p Parser) Parse(src Source) (perceptor.Snapshot, ErrorList) {
	r := &run{
		lex:     NewLexer(src),
		team:    p.TeamName,
		errDist: minErrDist,
	}
	var b builder

	r.get()
	r.perceptors(&b)

	if err := r.lex.Err(); err != nil {
		r.errs = append(r.errs, ParseError{Kind: SourceError, Expected: NoToken, Msg: err.Error()})
	}
	return b.build(), r.errs
}

// run is the working state of a single Parse call.
type run struct {
	lex     *Lexer
	t, la   Token
	errDist int
	errs    ErrorList
	team    string
}

func (r *run) get() {
	r.t = r.la
	r.la = r.lex.Next()
	r.errDist++
}

func describe(t Token) string {
	if t.Kind == EOF {
		return "end of message"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

func (r *run) synErr(expected TokenKind, msg string) {
	if r.errDist >= minErrDist {
		if msg == "" {
			msg = fmt.Sprintf("expected %s, found %s", expected, describe(r.la))
		}
		r.errs = append(r.errs, ParseError{
			Kind:     SyntaxError,
			Line:     r.la.Line,
			Col:      r.la.Col,
			Expected: expected,
			Msg:      msg,
		})
	}
	r.errDist = 0
}

func (r *run) semErr(at Token, format string, args ...interface{}) {
	r.errs = append(r.errs, ParseError{
		Kind:     SemanticError,
		Line:     at.Line,
		Col:      at.Col,
		Expected: NoToken,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// skipTo drops tokens until one in sync (or EOF) is the lookahead.
func (r *run) skipTo(sync tokenSet) {
	for r.la.Kind != EOF && !sync.has(r.la.Kind) {
		r.get()
	}
}

// expect consumes a token of the given kind. On a mismatch it records a
// syntax error and skips ahead to that kind or to something in follow; it
// reports whether the expected token was eventually consumed.
func (r *run) expect(kind TokenKind, follow tokenSet) bool {
	if r.la.Kind == kind {
		r.get()
		return true
	}
	r.synErr(kind, "")
	r.skipTo(follow.with(kind))
	if r.la.Kind == kind {
		r.get()
		return true
	}
	return false
}

// group parses "(" kw body ")". The closing paren is attempted even when the
// body failed so that recovery lands after the expression when it can.
func (r *run) group(kw TokenKind, follow tokenSet, body func(in tokenSet) bool) bool {
	in := follow.with(RParen)
	if !r.expect(LParen, follow.with(kw)) && r.la.Kind != kw {
		return false
	}
	ok := r.expect(kw, in) && body(in)
	return r.expect(RParen, follow) && ok
}

// namedGroup parses "(" Name body ")", where the leading name is data such as
// a see tag or a body part label.
func (r *run) namedGroup(follow tokenSet, body func(name Token, in tokenSet) bool) bool {
	in := follow.with(RParen)
	if !r.expect(LParen, follow) {
		return false
	}
	ok := r.name(in) && body(r.t, in)
	return r.expect(RParen, follow) && ok
}

// name accepts an identifier, or a reserved word used as a label.
func (r *run) name(follow tokenSet) bool {
	if r.la.Kind == Ident || r.la.Kind.IsKeyword() {
		r.get()
		return true
	}
	return r.expect(Ident, follow)
}

func (r *run) float(tok Token) (float64, bool) {
	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		r.semErr(tok, "invalid number %q", tok.Text)
		return 0, false
	}
	return v, true
}

func (r *run) number(follow tokenSet) (float64, bool) {
	if !r.expect(Number, follow) {
		return 0, false
	}
	return r.float(r.t)
}

func (r *run) integer(follow tokenSet) (int, bool) {
	v, ok := r.number(follow)
	if !ok {
		return 0, false
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		r.semErr(r.t, "%q is not a whole number", r.t.Text)
		return 0, false
	}
	return int(v), true
}

func (r *run) vector(follow tokenSet) (v [3]float64, ok bool) {
	ok = true
	for i := range v {
		var vok bool
		v[i], vok = r.number(follow)
		if !vok {
			return v, false
		}
	}
	return v, ok
}

func (r *run) labelValue(follow tokenSet) (label string, ok bool) {
	ok = r.group(KwN, follow, func(in tokenSet) bool {
		if !r.name(in) {
			return false
		}
		label = r.t.Text
		return true
	})
	return
}

func (r *run) numberValue(kw TokenKind, follow tokenSet) (v float64, ok bool) {
	ok = r.group(kw, follow, func(in tokenSet) bool {
		v, ok = r.number(in)
		return ok
	})
	return
}

func (r *run) vectorValue(kw TokenKind, follow tokenSet) (v [3]float64, ok bool) {
	ok = r.group(kw, follow, func(in tokenSet) bool {
		v, ok = r.vector(in)
		return ok
	})
	return
}

func (r *run) polar(follow tokenSet) (p perceptor.Polar, ok bool) {
	v, ok := r.vectorValue(KwPol, follow)
	return perceptor.Polar{Distance: v[0], Horizontal: v[1], Vertical: v[2]}, ok
}

// Perceptors = { "(" Perceptor } EOF
func (r *run) perceptors(b *builder) {
	follow := setOf(LParen, EOF)

	for r.la.Kind != EOF {
		if r.la.Kind != LParen {
			r.synErr(LParen, "")
			r.get()
			continue
		}

		switch next := r.lex.Peek(); next.Kind {
		case KwTime:
			r.timeExpr(b, follow)
		case KwGS:
			r.gameState(b, follow)
		case KwGyr:
			r.gyro(b, follow)
		case KwAcc:
			r.accelerometer(b, follow)
		case KwHJ:
			r.hingeJoint(b, follow)
		case KwUJ:
			r.universalJoint(b, follow)
		case KwTch:
			r.touch(b, follow)
		case KwFrp:
			r.forceResistance(b, follow)
		case KwAgentState:
			r.agentState(b, follow)
		case KwSee:
			r.see(b, follow)
		case KwHear:
			r.hear(b, follow)
		default:
			r.get()
			r.synErr(NoToken, fmt.Sprintf("unknown perceptor %s", describe(next)))
			r.skipRest()
		}
	}
}

// skipRest drops tokens up to and including the paren closing the current
// group.
func (r *run) skipRest() {
	depth := 1
	for r.la.Kind != EOF && depth > 0 {
		switch r.la.Kind {
		case LParen:
			depth++
		case RParen:
			depth--
		}
		r.get()
	}
}

// TimeExpr = "time" "(" "now" Number ")" ")"
func (r *run) timeExpr(b *builder, follow tokenSet) {
	r.group(KwTime, follow, func(in tokenSet) bool {
		now, ok := r.numberValue(KwNow, in)
		if ok {
			b.simulationTime(now)
		}
		return ok
	})
}

// GameState = "GS" { "(" ( "unum" Number | "team" Side | "t" GameTime | "pm" Ident ) ")" } ")"
func (r *run) gameState(b *builder, follow tokenSet) {
	r.group(KwGS, follow, func(in tokenSet) bool {
		item := in.with(LParen)
		for r.la.Kind == LParen {
			switch next := r.lex.Peek(); next.Kind {
			case KwUnum:
				r.group(KwUnum, item, func(in tokenSet) bool {
					n, ok := r.integer(in)
					if ok {
						b.playerNumber(n)
					}
					return ok
				})

			case KwTeam:
				r.group(KwTeam, item, func(in tokenSet) bool {
					switch r.la.Kind {
					case KwLeft:
						b.snap.Side = perceptor.SideLeft
					case KwRight:
						b.snap.Side = perceptor.SideRight
					default:
						r.synErr(KwLeft, fmt.Sprintf("expected left or right, found %s", describe(r.la)))
						r.skipTo(in)
						return false
					}
					r.get()
					return true
				})

			case KwT:
				r.group(KwT, item, func(in tokenSet) bool {
					var t float64
					var ok bool
					if r.la.Kind == LParen {
						t, ok = r.numberValue(KwNow, in)
					} else {
						t, ok = r.number(in)
					}
					if ok {
						b.gameTime(t)
					}
					return ok
				})

			case KwPm:
				r.group(KwPm, item, func(in tokenSet) bool {
					if !r.name(in) {
						return false
					}
					pm, ok := perceptor.ParsePlayMode(r.t.Text)
					if !ok {
						r.semErr(r.t, "unknown play mode %q", r.t.Text)
						return false
					}
					b.snap.PlayMode = pm
					return true
				})

			default:
				r.get()
				r.synErr(NoToken, fmt.Sprintf("unknown game state item %s", describe(next)))
				r.skipRest()
			}
		}
		return true
	})
}

// Gyro = "GYR" "(" "n" Name ")" "(" "rt" Number Number Number ")" ")"
func (r *run) gyro(b *builder, follow tokenSet) {
	r.group(KwGyr, follow, func(in tokenSet) bool {
		label, ok := r.labelValue(in)
		if !ok {
			return false
		}
		rate, ok := r.vectorValue(KwRt, in)
		if ok {
			b.snap.Gyros = append(b.snap.Gyros, perceptor.GyroState{Label: label, Rate: rate})
		}
		return ok
	})
}

// Accel = "ACC" "(" "n" Name ")" "(" "a" Number Number Number ")" ")"
func (r *run) accelerometer(b *builder, follow tokenSet) {
	r.group(KwAcc, follow, func(in tokenSet) bool {
		label, ok := r.labelValue(in)
		if !ok {
			return false
		}
		acc, ok := r.vectorValue(KwA, in)
		if ok {
			b.snap.Accelerometers = append(b.snap.Accelerometers, perceptor.AccelerometerState{Label: label, Acceleration: acc})
		}
		return ok
	})
}

// Hinge = "HJ" "(" "n" Name ")" "(" "ax" Number ")" ")"
func (r *run) hingeJoint(b *builder, follow tokenSet) {
	r.group(KwHJ, follow, func(in tokenSet) bool {
		label, ok := r.labelValue(in)
		if !ok {
			return false
		}
		angle, ok := r.numberValue(KwAx, in)
		if ok {
			b.snap.Hinges = append(b.snap.Hinges, perceptor.HingeState{Label: label, Angle: angle})
		}
		return ok
	})
}

// Universal = "UJ" "(" "n" Name ")" "(" "ax1" Number ")" "(" "ax2" Number ")" ")"
func (r *run) universalJoint(b *builder, follow tokenSet) {
	r.group(KwUJ, follow, func(in tokenSet) bool {
		label, ok := r.labelValue(in)
		if !ok {
			return false
		}
		a1, ok := r.numberValue(KwAx1, in)
		if !ok {
			return false
		}
		a2, ok := r.numberValue(KwAx2, in)
		if ok {
			b.snap.UniversalJoints = append(b.snap.UniversalJoints, perceptor.UniversalJointState{Label: label, Angle1: a1, Angle2: a2})
		}
		return ok
	})
}

// Touch = "TCH" "n" Name "val" Number ")"
func (r *run) touch(b *builder, follow tokenSet) {
	r.group(KwTch, follow, func(in tokenSet) bool {
		if !r.expect(KwN, in) || !r.name(in) {
			return false
		}
		label := r.t.Text
		if !r.expect(KwVal, in) {
			return false
		}
		v, ok := r.number(in)
		if ok {
			b.snap.Touches = append(b.snap.Touches, perceptor.TouchState{Label: label, Touching: v != 0})
		}
		return ok
	})
}

// Force = "FRP" "(" "n" Name ")" "(" "c" Vector ")" "(" "f" Vector ")" ")"
func (r *run) forceResistance(b *builder, follow tokenSet) {
	r.group(KwFrp, follow, func(in tokenSet) bool {
		label, ok := r.labelValue(in)
		if !ok {
			return false
		}
		point, ok := r.vectorValue(KwC, in)
		if !ok {
			return false
		}
		force, ok := r.vectorValue(KwF, in)
		if ok {
			b.snap.Forces = append(b.snap.Forces, perceptor.ForceState{Label: label, Point: point, Force: force})
		}
		return ok
	})
}

// AgentState = "AgentState" { "(" ( "temp" Number | "battery" Number ) ")" } ")"
func (r *run) agentState(b *builder, follow tokenSet) {
	r.group(KwAgentState, follow, func(in tokenSet) bool {
		item := in.with(LParen)
		for r.la.Kind == LParen {
			switch next := r.lex.Peek(); next.Kind {
			case KwTemp:
				if v, ok := r.numberValue(KwTemp, item); ok {
					b.temperature(v)
				}
			case KwBattery:
				if v, ok := r.numberValue(KwBattery, item); ok {
					b.battery(v)
				}
			default:
				r.get()
				r.synErr(NoToken, fmt.Sprintf("unknown agent state item %s", describe(next)))
				r.skipRest()
			}
		}
		return true
	})
}

// See = "See" { "(" ( "P" Player | Name { Polar } ) ")" } ")"
func (r *run) see(b *builder, follow tokenSet) {
	r.group(KwSee, follow, func(in tokenSet) bool {
		item := in.with(LParen)
		for r.la.Kind == LParen {
			if r.lex.Peek().Kind == KwP {
				r.player(b, item)
			} else {
				r.seeItem(b, item)
			}
		}
		return true
	})
}

func (r *run) seeItem(b *builder, follow tokenSet) {
	r.namedGroup(follow, func(tag Token, in tokenSet) bool {
		if r.la.Kind != LParen {
			r.synErr(KwPol, "")
			return false
		}
		bearings := r.bearings(in)
		if len(bearings) == 0 {
			return false
		}

		if tag.Text == perceptor.BallTag {
			b.ball(bearings[0])
			return true
		}
		lm, ok := perceptor.ParseLandmark(tag.Text)
		if !ok {
			r.semErr(tag, "unknown see tag %q", tag.Text)
			return false
		}
		b.snap.Landmarks = append(b.snap.Landmarks, perceptor.LandmarkSighting{Landmark: lm, Bearing: bearings[0]})
		return true
	})
}

func (r *run) bearings(follow tokenSet) (bearings []perceptor.Polar) {
	for r.la.Kind == LParen {
		if p, ok := r.polar(follow.with(LParen)); ok {
			bearings = append(bearings, p)
		}
	}
	return
}

// Player = "P" { "(" ( "team" Name | "id" Number | Name Polar ) ")" }
func (r *run) player(b *builder, follow tokenSet) {
	var ps perceptor.PlayerSighting

	ok := r.group(KwP, follow, func(in tokenSet) bool {
		item := in.with(LParen)
		for r.la.Kind == LParen {
			switch r.lex.Peek().Kind {
			case KwTeam:
				r.group(KwTeam, item, func(in tokenSet) bool {
					if !r.name(in) {
						return false
					}
					ps.TeamName = r.t.Text
					return true
				})
			case KwId:
				r.group(KwId, item, func(in tokenSet) bool {
					n, ok := r.integer(in)
					ps.Number = n
					return ok
				})
			default:
				r.namedGroup(item, func(part Token, in tokenSet) bool {
					p, ok := r.polar(in)
					if ok {
						ps.Parts = append(ps.Parts, perceptor.BodyPartSighting{Label: part.Text, Bearing: p})
					}
					return ok
				})
			}
		}
		return true
	})

	if ok {
		ps.IsTeammate = ps.TeamName == r.team
		b.player(ps)
	}
}

// Hear = "hear" ( Number | "(" "time" Number ")" ) ( "self" | Number ) ( Message | Name | Number ) ")"
func (r *run) hear(b *builder, follow tokenSet) {
	r.group(KwHear, follow, func(in tokenSet) bool {
		var msg perceptor.HeardMessage
		var ok bool

		if r.la.Kind == LParen {
			msg.Time, ok = r.numberValue(KwTime, in)
		} else {
			msg.Time, ok = r.number(in)
		}
		if !ok {
			return false
		}

		switch r.la.Kind {
		case KwSelf:
			r.get()
			msg.Direction = math.NaN()
		case Number:
			if msg.Direction, ok = r.number(in); !ok {
				return false
			}
		default:
			r.synErr(KwSelf, fmt.Sprintf("expected self or a direction, found %s", describe(r.la)))
			r.skipTo(in)
			return false
		}

		switch {
		case r.la.Kind == Message, r.la.Kind == Ident, r.la.Kind == Number, r.la.Kind.IsKeyword():
			r.get()
			msg.Text = r.t.Text
		default:
			r.synErr(Message, "")
			r.skipTo(in)
			return false
		}

		b.snap.Messages = append(b.snap.Messages, msg)
		return true
	})
}
