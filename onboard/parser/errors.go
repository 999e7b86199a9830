package parser

import (
	"fmt"
	"strings"
)

type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	SemanticError
	// SourceError is a read failure of the underlying source.
	SourceError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case SemanticError:
		return "semantic"
	default:
		return "source"
	}
}

// ParseError is one problem found while decoding a message. Line is 0 when
// the position is unknown. Expected is only meaningful for syntax errors.
type ParseError struct {
	Kind     ErrorKind
	Line     int
	Col      int
	Expected TokenKind
	Msg      string
}

func (e ParseError) Error() string {
	pos := "unknown position"
	if e.Line > 0 {
		pos = fmt.Sprintf("%d:%d", e.Line, e.Col)
	}
	return fmt.Sprintf("%s error at %s: %s", e.Kind, pos, e.Msg)
}

// ErrorList collects every error recorded for a single message.
type ErrorList []ParseError

// Err returns the list as an error, or nil when it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}

	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(l), strings.Join(msgs, "; "))
}
