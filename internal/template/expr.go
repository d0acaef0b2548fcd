package template

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedExpression = errors.New("template: malformed expression")
	ErrNonNumericOperand   = errors.New("template: non-numeric operand")
	ErrUnknownField        = errors.New("template: unknown field")
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

// EvalCondition evaluates "<operand> <op> <operand>" where an operand is a
// numeric literal or a field of data and op is one of < > <= >= ==.
// Nothing else is accepted.
func EvalCondition(expr string, data map[string]any) (bool, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return false, err
	}
	if len(toks) != 3 || toks[1].kind != tokOp || toks[0].kind == tokOp || toks[2].kind == tokOp {
		return false, fmt.Errorf("%w: %q", ErrMalformedExpression, strings.TrimSpace(expr))
	}

	left, err := operand(toks[0], data)
	if err != nil {
		return false, err
	}
	right, err := operand(toks[2], data)
	if err != nil {
		return false, err
	}

	switch toks[1].text {
	case "<":
		return left.LessThan(right), nil
	case ">":
		return left.GreaterThan(right), nil
	case "<=":
		return left.LessThanOrEqual(right), nil
	case ">=":
		return left.GreaterThanOrEqual(right), nil
	case "==":
		return left.Equal(right), nil
	}
	return false, fmt.Errorf("%w: operator %q", ErrMalformedExpression, toks[1].text)
}

func operand(t token, data map[string]any) (decimal.Decimal, error) {
	if t.kind == tokNumber {
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrNonNumericOperand, t.text)
		}
		return v, nil
	}

	raw, ok := data[t.text]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownField, t.text)
	}
	v, err := decimal.NewFromString(strings.TrimSpace(stringify(raw)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%v", ErrNonNumericOperand, t.text, raw)
	}
	return v, nil
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	rs := []rune(expr)

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '<' || r == '>' || r == '=':
			op := string(r)
			if i+1 < len(rs) && rs[i+1] == '=' {
				op += "="
				i++
			}
			i++
			if op == "=" {
				return nil, fmt.Errorf("%w: bare '='", ErrMalformedExpression)
			}
			toks = append(toks, token{kind: tokOp, text: op})
		case unicode.IsDigit(r) || r == '.' || ((r == '-' || r == '+') && i+1 < len(rs) && (unicode.IsDigit(rs[i+1]) || rs[i+1] == '.')):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j])})
			i = j
		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedExpression, r)
		}
	}
	return toks, nil
}
