package parser

import "fmt"

type TokenKind int

const (
	// NoToken marks errors where one of several alternatives was expected.
	NoToken TokenKind = iota - 1
	EOF
	Number
	Ident
	Message
	LParen
	RParen

	// reserved words
	KwTime
	KwNow
	KwGS
	KwUnum
	KwTeam
	KwLeft
	KwRight
	KwT
	KwPm
	KwGyr
	KwRt
	KwAcc
	KwA
	KwHJ
	KwAx
	KwUJ
	KwAx1
	KwAx2
	KwTch
	KwN
	KwVal
	KwFrp
	KwC
	KwF
	KwSee
	KwP
	KwId
	KwPol
	KwHear
	KwSelf
	KwAgentState
	KwTemp
	KwBattery

	numKinds
)

var keywords = map[string]TokenKind{
	"time":       KwTime,
	"now":        KwNow,
	"GS":         KwGS,
	"unum":       KwUnum,
	"team":       KwTeam,
	"left":       KwLeft,
	"right":      KwRight,
	"t":          KwT,
	"pm":         KwPm,
	"GYR":        KwGyr,
	"rt":         KwRt,
	"ACC":        KwAcc,
	"a":          KwA,
	"HJ":         KwHJ,
	"ax":         KwAx,
	"UJ":         KwUJ,
	"ax1":        KwAx1,
	"ax2":        KwAx2,
	"TCH":        KwTch,
	"n":          KwN,
	"val":        KwVal,
	"FRP":        KwFrp,
	"c":          KwC,
	"f":          KwF,
	"See":        KwSee,
	"P":          KwP,
	"id":         KwId,
	"pol":        KwPol,
	"hear":       KwHear,
	"self":       KwSelf,
	"AgentState": KwAgentState,
	"temp":       KwTemp,
	"battery":    KwBattery,
}

var kindNames = [numKinds]string{
	EOF:     "EOF",
	Number:  "number",
	Ident:   "identifier",
	Message: "message",
	LParen:  `"("`,
	RParen:  `")"`,
}

func init() {
	for word, kind := range keywords {
		kindNames[kind] = `"` + word + `"`
	}
}

func (k TokenKind) String() string {
	if k == NoToken {
		return "alternative"
	}
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsKeyword reports whether k is one of the reserved words.
func (k TokenKind) IsKeyword() bool {
	return k >= KwTime && k < numKinds
}

// Token is a single lexeme. Line and Col are 1-based and point at the first
// byte of the token.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q at %d:%d", t.Kind, t.Text, t.Line, t.Col)
}

// tokenSet is a bit set over token kinds, used for follow sets.
type tokenSet uint64

func setOf(kinds ...TokenKind) tokenSet {
	var s tokenSet
	for _, k := range kinds {
		s |= 1 << uint(k)
	}
	return s
}

func (s tokenSet) has(k TokenKind) bool {
	return s&(1<<uint(k)) != 0
}

func (s tokenSet) with(kinds ...TokenKind) tokenSet {
	return s | setOf(kinds...)
}
