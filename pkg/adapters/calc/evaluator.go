// Package calc provides a small prefix-arithmetic Evaluator, enough to make
// documents like "total: {{(+ 1 2)}}" self-contained without shelling out.
package calc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Evaluator evaluates prefix arithmetic expressions: "(+ 1 2)", "(* 3 (- 5
// 1))", or a bare number. Pure and deterministic, which also makes it the
// evaluator of choice for engine tests.
type Evaluator struct{}

// New creates a calc evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate parses and reduces the expression, formatting integral results
// without a decimal point.
func (e *Evaluator) Evaluate(_ context.Context, source string) (string, error) {
	p := &parser{toks: tokenize(source)}
	v, err := p.expr()
	if err != nil {
		return "", err
	}
	if p.pos != len(p.toks) {
		return "", fmt.Errorf("trailing input after expression: %q", strings.Join(p.toks[p.pos:], " "))
	}
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10), nil
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

func tokenize(src string) []string {
	src = strings.ReplaceAll(src, "(", " ( ")
	src = strings.ReplaceAll(src, ")", " ) ")
	return strings.Fields(src)
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) next() (string, error) {
	if p.pos >= len(p.toks) {
		return "", fmt.Errorf("unexpected end of expression")
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) expr() (float64, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}

	if t != "(" {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("expected number or '(', got %q", t)
		}
		return v, nil
	}

	op, err := p.next()
	if err != nil {
		return 0, err
	}

	var args []float64
	for {
		if p.pos < len(p.toks) && p.toks[p.pos] == ")" {
			p.pos++
			break
		}
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
	}
	return apply(op, args)
}

func apply(op string, args []float64) (float64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("operator %q needs at least one argument", op)
	}
	acc := args[0]
	for _, v := range args[1:] {
		switch op {
		case "+":
			acc += v
		case "-":
			acc -= v
		case "*":
			acc *= v
		case "/":
			if v == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			acc /= v
		default:
			return 0, fmt.Errorf("unknown operator %q", op)
		}
	}
	if len(args) == 1 && op == "-" {
		acc = -acc
	}
	return acc, nil
}
