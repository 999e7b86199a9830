package parser

import (
	"io"
	"strings"
)

type lexState int

const (
	stNone lexState = iota - 1
	stStart
	stLParen
	stRParen
	stIdent
	stSign
	stInt
	stDot
	stFrac
	stExp
	stExpSign
	stExpDigits
	stMsgBody
	stMsgClose
	numStates
)

type charClass int

const (
	ccOther charClass = iota
	ccDigit
	ccLetter
	ccExp
	ccMinus
	ccPlus
	ccDot
	ccUnderscore
	ccQuote
	ccLParen
	ccRParen
	ccSpace
	ccPrintable
	numClasses
)

var (
	transitions [numStates][numClasses]lexState
	accepting   = map[lexState]TokenKind{
		stLParen:    LParen,
		stRParen:    RParen,
		stIdent:     Ident,
		stInt:       Number,
		stFrac:      Number,
		stExpDigits: Number,
		stMsgClose:  Message,
	}
)

func init() {
	for s := range transitions {
		for c := range transitions[s] {
			transitions[s][c] = stNone
		}
	}

	on := func(from lexState, to lexState, classes ...charClass) {
		for _, c := range classes {
			transitions[from][c] = to
		}
	}

	on(stStart, stInt, ccDigit)
	on(stStart, stIdent, ccLetter, ccExp)
	on(stStart, stSign, ccMinus)
	on(stStart, stMsgBody, ccQuote)
	on(stStart, stLParen, ccLParen)
	on(stStart, stRParen, ccRParen)

	on(stIdent, stIdent, ccDigit, ccLetter, ccExp, ccMinus, ccUnderscore)

	on(stSign, stInt, ccDigit)
	on(stInt, stInt, ccDigit)
	on(stInt, stDot, ccDot)
	on(stInt, stExp, ccExp)
	on(stDot, stFrac, ccDigit)
	on(stFrac, stFrac, ccDigit)
	on(stFrac, stExp, ccExp)
	on(stExp, stExpSign, ccMinus, ccPlus)
	on(stExp, stExpDigits, ccDigit)
	on(stExpSign, stExpDigits, ccDigit)
	on(stExpDigits, stExpDigits, ccDigit)

	// printable ASCII without space, parens and the quote itself
	on(stMsgBody, stMsgBody, ccDigit, ccLetter, ccExp, ccMinus, ccPlus, ccDot, ccUnderscore, ccPrintable)
	on(stMsgBody, stMsgClose, ccQuote)
	// a second quote straight after the closing one is an escaped quote
	on(stMsgClose, stMsgBody, ccQuote)
}

func classify(b byte) charClass {
	switch {
	case b >= '0' && b <= '9':
		return ccDigit
	case b == 'e' || b == 'E':
		return ccExp
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return ccLetter
	}

	switch b {
	case '-':
		return ccMinus
	case '+':
		return ccPlus
	case '.':
		return ccDot
	case '_':
		return ccUnderscore
	case '\'':
		return ccQuote
	case '(':
		return ccLParen
	case ')':
		return ccRParen
	case ' ':
		return ccSpace
	}

	if b > ' ' && b <= '~' {
		return ccPrintable
	}
	return ccOther
}

// Lexer turns a Source into tokens. Bytes that do not fit the token grammar
// are dropped silently: in the start state they are skipped, and inside an
// unfinished token they throw the partial token away.
type Lexer struct {
	src       Source
	line, col int
	err       error
}

func NewLexer(src Source) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Err returns the first non-EOF error reported by the source.
func (l *Lexer) Err() error {
	return l.err
}

func (l *Lexer) peekByte() (byte, bool) {
	b, err := l.src.Peek()
	if err != nil {
		if err != io.EOF && l.err == nil {
			l.err = err
		}
		return 0, false
	}
	return b, true
}

func (l *Lexer) advance() {
	b, err := l.src.Read()
	if err != nil {
		return
	}
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// Next scans the next token. At end of input it keeps returning EOF.
func (l *Lexer) Next() Token {
	var text strings.Builder

	for {
		state := stStart
		text.Reset()
		startLine, startCol := l.line, l.col

		for {
			b, ok := l.peekByte()
			var next lexState = stNone
			if ok {
				next = transitions[state][classify(b)]
			}

			if next != stNone {
				if state == stStart {
					startLine, startCol = l.line, l.col
				}
				text.WriteByte(b)
				l.advance()
				state = next
				continue
			}

			if kind, final := accepting[state]; final {
				return l.emit(kind, text.String(), startLine, startCol)
			}

			if state == stStart {
				if !ok {
					return Token{Kind: EOF, Line: l.line, Col: l.col}
				}
				// whitespace or a byte nothing starts with
				l.advance()
				continue
			}

			// dead end inside a token: drop it and rescan from this byte
			break
		}
	}
}

func (l *Lexer) emit(kind TokenKind, text string, line, col int) Token {
	switch kind {
	case Ident:
		if kw, ok := keywords[text]; ok {
			kind = kw
		}
	case Message:
		text = strings.ReplaceAll(text[1:len(text)-1], "''", "'")
	}
	return Token{Kind: kind, Text: text, Line: line, Col: col}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	pos, line, col := l.src.Position(), l.line, l.col
	tok := l.Next()
	if err := l.src.SetPosition(pos); err != nil && l.err == nil {
		l.err = err
	}
	l.line, l.col = line, col
	return tok
}
