// Package calculator evaluates spoken arithmetic such as "5 times 8" without
// handing the text to an interpreter. Only numbers, + - * / and unary signs
// are understood.
package calculator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmpty        = errors.New("no calculation found")
	ErrDivideByZero = errors.New("division by zero")
	ErrSyntax       = errors.New("malformed expression")
)

var operatorWords = strings.NewReplacer(
	"divided by", "/",
	"divided with", "/",
	"multiplied by", "*",
	"times", "*",
	"added to", "+",
	"plus", "+",
	"minus", "-",
)

var notExpression = regexp.MustCompile(`[^\d+\-*/.]`)

// Expression turns free text into a bare arithmetic expression. The result
// may be empty.
func Expression(text string) string {
	text = operatorWords.Replace(strings.ToLower(text))
	return notExpression.ReplaceAllString(text, "")
}

// Calculate extracts and evaluates the expression contained in text.
func Calculate(text string) (decimal.Decimal, error) {
	expr := Expression(text)
	if expr == "" {
		return decimal.Zero, ErrEmpty
	}

	return Evaluate(expr)
}

// Evaluate computes expr with * and / binding tighter than + and -.
func Evaluate(expr string) (decimal.Decimal, error) {
	p := parser{src: expr}

	value, err := p.parseSum()
	if err != nil {
		return decimal.Zero, err
	}
	if p.pos != len(p.src) {
		return decimal.Zero, ErrSyntax
	}

	return value, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) parseSum() (decimal.Decimal, error) {
	left, err := p.parseProduct()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++

		right, err := p.parseProduct()
		if err != nil {
			return decimal.Zero, err
		}

		if op == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
}

func (p *parser) parseProduct() (decimal.Decimal, error) {
	left, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++

		right, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}

		if op == '*' {
			left = left.Mul(right)
			continue
		}

		if right.IsZero() {
			return decimal.Zero, ErrDivideByZero
		}
		left = left.Div(right)
	}
}

func (p *parser) parseFactor() (decimal.Decimal, error) {
	switch p.peek() {
	case '-':
		p.pos++
		value, err := p.parseFactor()
		return value.Neg(), err
	case '+':
		p.pos++
		return p.parseFactor()
	}

	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] == '.' || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
		p.pos++
	}
	if start == p.pos {
		return decimal.Zero, ErrSyntax
	}

	value, err := decimal.NewFromString(p.src[start:p.pos])
	if err != nil {
		return decimal.Zero, ErrSyntax
	}

	return value, nil
}
