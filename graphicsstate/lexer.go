package graphicsstate

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Operation is one content stream operator with its operands. Only numeric
// operands carry a value; any other operand (string, name, array,
// dictionary) is kept as NaN so operand counts stay correct.
type Operation struct {
	Operator string
	Operands []float64
}

// Lexer splits a decoded content stream into operations
type Lexer struct {
	data     []byte
	pos      int
	operands []float64
}

// NewLexer creates a lexer over data
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Parse reads all operations in stream order
func Parse(data []byte) ([]Operation, error) {
	return NewLexer(data).Parse()
}

// Parse reads all operations in stream order
func (l *Lexer) Parse() ([]Operation, error) {
	var ops []Operation

	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.data) {
			return ops, nil
		}

		c := l.data[l.pos]
		if isRegular(c) && !isNumberStart(c) {
			op := l.readKeyword()
			switch op {
			case "true", "false", "null":
				l.operands = append(l.operands, math.NaN())
				continue
			case "BI":
				l.skipInlineImage()
				l.operands = l.operands[:0]
				continue
			}
			ops = append(ops, Operation{Operator: op, Operands: append([]float64(nil), l.operands...)})
			l.operands = l.operands[:0]
			continue
		}

		start := l.pos
		if err := l.readOperand(); err != nil {
			return ops, fmt.Errorf("at offset %d: %w", start, err)
		}
	}
}

func (l *Lexer) readOperand() error {
	c := l.data[l.pos]
	switch {
	case isNumberStart(c):
		l.operands = append(l.operands, l.readNumber())
		return nil
	case c == '(':
		return l.skipString()
	case c == '<' && l.peek(1) == '<':
		return l.skipNested('<', '>')
	case c == '<':
		end := bytes.IndexByte(l.data[l.pos:], '>')
		if end < 0 {
			return fmt.Errorf("unterminated hex string")
		}
		l.pos += end + 1
	case c == '[':
		return l.skipNested('[', ']')
	case c == '/':
		l.pos++
		for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
			l.pos++
		}
	default:
		return fmt.Errorf("unexpected character %q", c)
	}
	l.operands = append(l.operands, math.NaN())
	return nil
}

func (l *Lexer) readNumber() float64 {
	start := l.pos
	l.pos++
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		l.pos++
	}
	v, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (l *Lexer) readKeyword() string {
	start := l.pos
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// skipString skips a literal string, honoring escapes and balanced parens
func (l *Lexer) skipString() error {
	depth := 0
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				l.operands = append(l.operands, math.NaN())
				return nil
			}
		}
		l.pos++
	}
	return fmt.Errorf("unterminated string")
}

// skipNested skips an array or dictionary including nested strings
func (l *Lexer) skipNested(open, close byte) error {
	depth := 0
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == '(':
			saved := len(l.operands)
			if err := l.skipString(); err != nil {
				return err
			}
			l.operands = l.operands[:saved]
			continue
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				l.pos++
				l.operands = append(l.operands, math.NaN())
				return nil
			}
		}
		l.pos++
	}
	return fmt.Errorf("unterminated %c", open)
}

// skipInlineImage moves past BI ... ID <data> EI
func (l *Lexer) skipInlineImage() {
	id := bytes.Index(l.data[l.pos:], []byte("ID"))
	if id < 0 {
		l.pos = len(l.data)
		return
	}
	l.pos += id + 2

	for l.pos < len(l.data) {
		ei := bytes.Index(l.data[l.pos:], []byte("EI"))
		if ei < 0 {
			l.pos = len(l.data)
			return
		}
		at := l.pos + ei
		l.pos = at + 2
		if at > 0 && isSpace(l.data[at-1]) && (l.pos >= len(l.data) || isSpace(l.data[l.pos])) {
			return
		}
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.data) {
		return l.data[l.pos+n]
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isSpace(c) && !isDelimiter(c)
}

func isNumberStart(c byte) bool {
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}
