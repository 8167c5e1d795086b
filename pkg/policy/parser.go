package policy

import (
	"strconv"
	"strings"

	"github.com/opsnet/unet/pkg/value"
)

// ParseRules parses the full text form of a policy rule set: one rule per
// non-blank, non-comment line of "WHEN <condition> THEN <action>". Empty
// input parses to an empty rule list. Any malformed line returns a
// ParseError identifying the byte offset within that line.
func ParseRules(src string) ([]PolicyRule, error) {
	var rules []PolicyRule
	for _, line := range strings.Split(src, "\n") {
		stripped := strings.TrimSpace(stripComment(line))
		if stripped == "" {
			continue
		}
		rule, err := parseLine(stripped)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

type parser struct {
	toks []token
	pos  int
}

func parseLine(line string) (PolicyRule, error) {
	toks, err := lex(line)
	if err != nil {
		return PolicyRule{}, err
	}
	p := &parser{toks: toks}

	if !p.expect(tokWhen) {
		return PolicyRule{}, p.errorf("expected WHEN")
	}
	cond, err := p.parseOr()
	if err != nil {
		return PolicyRule{}, err
	}
	if !p.expect(tokThen) {
		return PolicyRule{}, p.errorf("expected THEN")
	}
	action, err := p.parseAction()
	if err != nil {
		return PolicyRule{}, err
	}
	if p.cur().kind != tokEOF {
		return PolicyRule{}, p.errorf("unexpected trailing input")
	}
	return PolicyRule{Condition: cond, Action: action}, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) bool {
	if p.cur().kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *parser) errorf(reason string) error {
	return &ParseError{Position: p.cur().pos, Reason: reason}
}

// parseOr := parseAnd (OR parseAnd)*
func (p *parser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return Condition{}, err
	}
	for p.cur().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return Condition{}, err
		}
		left = Or(left, right)
	}
	return left, nil
}

// parseAnd := parseNot (AND parseNot)*
func (p *parser) parseAnd() (Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return Condition{}, err
	}
	for p.cur().kind == tokAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return Condition{}, err
		}
		left = And(left, right)
	}
	return left, nil
}

// parseNot := NOT parseNot | parsePrimary
func (p *parser) parseNot() (Condition, error) {
	if p.cur().kind == tokNot {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return Condition{}, err
		}
		return Not(inner), nil
	}
	return p.parsePrimary()
}

// parsePrimary := '(' parseOr ')' | fieldPath (comparisonTail | existenceTail)
func (p *parser) parsePrimary() (Condition, error) {
	if p.cur().kind == tokLParen {
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return Condition{}, err
		}
		if !p.expect(tokRParen) {
			return Condition{}, p.errorf("expected closing ')'")
		}
		return inner, nil
	}

	if p.cur().kind != tokIdent {
		return Condition{}, p.errorf("expected field reference")
	}
	field := value.ParseFieldRef(p.advance().text)

	switch p.cur().kind {
	case tokIs:
		p.advance()
		isNull := true
		if p.cur().kind == tokNot {
			p.advance()
			isNull = false
		}
		if !p.expect(tokNull) {
			return Condition{}, p.errorf("expected NULL after IS [NOT]")
		}
		return Existence(field, isNull), nil
	case tokEqEq, tokNotEq, tokLt, tokLtEq, tokGt, tokGtEq, tokContains, tokMatches:
		op := opFor(p.advance().kind)
		val, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		return Comparison(field, op, val), nil
	default:
		return Condition{}, p.errorf("expected comparison operator or IS")
	}
}

func opFor(kind tokenKind) ComparisonOp {
	switch kind {
	case tokEqEq:
		return OpEqual
	case tokNotEq:
		return OpNotEqual
	case tokLt:
		return OpLessThan
	case tokLtEq:
		return OpLessThanOrEqual
	case tokGt:
		return OpGreaterThan
	case tokGtEq:
		return OpGreaterThanOrEqual
	case tokContains:
		return OpContains
	case tokMatches:
		return OpMatches
	default:
		return OpEqual
	}
}

func (p *parser) parseValue() (value.Value, error) {
	t := p.cur()
	switch t.kind {
	case tokString:
		p.advance()
		return value.String(t.text), nil
	case tokNumber:
		p.advance()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return value.Value{}, p.errorf("invalid number literal")
		}
		if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
			return value.Int(i), nil
		}
		return value.Float(f), nil
	case tokBool:
		p.advance()
		return value.Bool(t.text == "true"), nil
	case tokRegex:
		p.advance()
		return value.Regex(t.text), nil
	default:
		return value.Value{}, p.errorf("expected a value (string, number, boolean, or /regex/)")
	}
}

// parseAction := ASSERT field IS value | SET field TO value | APPLY "path"
func (p *parser) parseAction() (Action, error) {
	switch p.cur().kind {
	case tokAssert:
		p.advance()
		field, err := p.parseFieldRef()
		if err != nil {
			return Action{}, err
		}
		if !p.expect(tokIs) {
			return Action{}, p.errorf("expected IS after ASSERT field")
		}
		val, err := p.parseValue()
		if err != nil {
			return Action{}, err
		}
		return Assert(field, val), nil
	case tokSet:
		p.advance()
		field, err := p.parseFieldRef()
		if err != nil {
			return Action{}, err
		}
		if !p.expect(tokTo) {
			return Action{}, p.errorf("expected TO after SET field")
		}
		val, err := p.parseValue()
		if err != nil {
			return Action{}, err
		}
		return Set(field, val), nil
	case tokApply:
		p.advance()
		if p.cur().kind != tokString {
			return Action{}, p.errorf("expected quoted template path after APPLY")
		}
		path := p.advance().text
		return ApplyTemplate(path), nil
	default:
		return Action{}, p.errorf("expected ASSERT, SET, or APPLY")
	}
}

func (p *parser) parseFieldRef() (FieldRef, error) {
	if p.cur().kind != tokIdent {
		return nil, p.errorf("expected field reference")
	}
	return value.ParseFieldRef(p.advance().text), nil
}
