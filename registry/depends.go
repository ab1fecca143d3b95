package registry

import (
	"errors"
	"fmt"
	"strings"
)

// evalDepends evaluates a depends expression such as
// "VK_KHR_get_physical_device_properties2,VK_VERSION_1_1". '+' is a logical
// and, ',' a logical or, and parentheses group terms.
func evalDepends(expr string, selected func(name string) bool) (bool, error) {
	p := &dependsParser{tokens: tokenizeDepends(expr), selected: selected}
	v, err := p.or()
	if err != nil {
		return false, fmt.Errorf("depends %q: %w", expr, err)
	}
	if p.pos != len(p.tokens) {
		return false, fmt.Errorf("depends %q: unexpected %q", expr, p.tokens[p.pos])
	}
	return v, nil
}

func tokenizeDepends(expr string) []string {
	var tokens []string
	var name strings.Builder
	flush := func() {
		if name.Len() > 0 {
			tokens = append(tokens, name.String())
			name.Reset()
		}
	}
	for _, r := range expr {
		switch r {
		case '(', ')', '+', ',':
			flush()
			tokens = append(tokens, string(r))
		case ' ', '\t', '\n':
			flush()
		default:
			name.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type dependsParser struct {
	tokens   []string
	pos      int
	selected func(string) bool
}

func (p *dependsParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *dependsParser) or() (bool, error) {
	v, err := p.and()
	if err != nil {
		return false, err
	}
	for p.peek() == "," {
		p.pos++
		rhs, err := p.and()
		if err != nil {
			return false, err
		}
		v = v || rhs
	}
	return v, nil
}

func (p *dependsParser) and() (bool, error) {
	v, err := p.term()
	if err != nil {
		return false, err
	}
	for p.peek() == "+" {
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return false, err
		}
		v = v && rhs
	}
	return v, nil
}

func (p *dependsParser) term() (bool, error) {
	tok := p.peek()
	switch tok {
	case "":
		return false, errors.New("unexpected end of expression")
	case "(":
		p.pos++
		v, err := p.or()
		if err != nil {
			return false, err
		}
		if p.peek() != ")" {
			return false, errors.New("missing )")
		}
		p.pos++
		return v, nil
	case ")", "+", ",":
		return false, fmt.Errorf("unexpected %q", tok)
	}
	p.pos++
	// feature::member references depend on the feature only
	name, _, _ := strings.Cut(tok, "::")
	return p.selected(name), nil
}
