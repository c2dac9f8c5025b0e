// Package formula parses R-style model formulas into explicit design
// specifications.
//
// A formula names the response column, a tilde, then the model terms:
//
//	y ~ a + b        main effects
//	y ~ a:b          pure interaction
//	y ~ a*b          crossing, expands to a + b + a:b
//	y ~ 1            intercept-only model
//
// Parse is the only place in the module that reads formula text; everything
// downstream works on the explicit design.Spec it returns. The intercept is
// controlled by the spec alone, so the R idioms "-1" and "+0" are rejected
// with a pointer to design.WithoutIntercept.
package formula

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"unicode"

	"github.com/statkit/glm/design"
	"github.com/statkit/glm/pkg/errors"
	"github.com/statkit/glm/pkg/log"
)

// Parse converts a formula into the response column name and an explicit
// model specification. Options are forwarded to design.NewSpec, so contrast
// codings and intercept suppression are attached here:
//
//	resp, spec, err := formula.Parse("y ~ group*dose",
//		design.WithCoding("group", design.Helmert()))
//
// Crossings expand mains before interactions ("a*b*c" yields a, b, c, a:b,
// a:c, b:c, a:b:c) and duplicate terms collapse to their first appearance,
// treating "a:b" and "b:a" as the same term.
func Parse(formula string, opts ...design.SpecOption) (string, *design.Spec, error) {
	tokens, err := lex(formula)
	if err != nil {
		return "", nil, err
	}
	p := &parser{formula: formula, tokens: tokens}

	response, err := p.response()
	if err != nil {
		return "", nil, err
	}
	terms, err := p.sum()
	if err != nil {
		return "", nil, err
	}
	if tok, ok := p.peek(); ok {
		return "", nil, p.errorf(tok.pos, "unexpected %q after the model terms", tok.text)
	}

	spec := design.NewSpec(terms, opts...)
	log.GetLoggerWithName("formula").Debug("formula parsed",
		log.OperationKey, log.OperationParse,
		log.FormulaKey, formula,
		log.ResponseKey, response,
		log.TermsKey, spec.NumTerms(),
	)
	return response, spec, nil
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenTilde
	tokenPlus
	tokenColon
	tokenStar
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '~':
			tokens = append(tokens, token{tokenTilde, "~", i})
			i++
		case r == '+':
			tokens = append(tokens, token{tokenPlus, "+", i})
			i++
		case r == ':':
			tokens = append(tokens, token{tokenColon, ":", i})
			i++
		case r == '*':
			tokens = append(tokens, token{tokenStar, "*", i})
			i++
		case r == '-':
			return nil, errors.NewValueError("formula.Parse",
				"term removal ('-1') is not part of formula syntax; suppress the intercept with design.WithoutIntercept()")
		case isIdentRune(r):
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[start:i]), start})
		default:
			return nil, errors.NewValueError("formula.Parse",
				fmt.Sprintf("unexpected character %q at position %d", r, i))
		}
	}
	return tokens, nil
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

type parser struct {
	formula string
	tokens  []token
	pos     int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) errorf(pos int, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return errors.NewValueError("formula.Parse",
		fmt.Sprintf("%s at position %d in %q", msg, pos, p.formula))
}

func (p *parser) errEnd() error {
	return errors.NewValueError("formula.Parse",
		fmt.Sprintf("formula %q ended unexpectedly", p.formula))
}

// response parses the left-hand side: a single column name and the tilde.
func (p *parser) response() (string, error) {
	tok, ok := p.next()
	if !ok {
		return "", errors.NewValueError("formula.Parse", "empty formula")
	}
	if tok.kind != tokenIdent {
		return "", p.errorf(tok.pos, "expected a response column name, got %q", tok.text)
	}
	if tok.text == "0" || tok.text == "1" {
		return "", p.errorf(tok.pos, "response must name a dataset column, got %q", tok.text)
	}
	sep, ok := p.next()
	if !ok {
		return "", errors.NewValueError("formula.Parse",
			fmt.Sprintf("formula %q needs a '~' between response and terms", p.formula))
	}
	if sep.kind != tokenTilde {
		return "", p.errorf(sep.pos, "expected '~' after the response, got %q", sep.text)
	}
	return tok.text, nil
}

// sum parses "term (+ term)*", expanding crossings and collapsing duplicate
// terms as it goes.
func (p *parser) sum() ([]design.Term, error) {
	var terms []design.Term
	seen := make(map[string]struct{})
	for {
		expanded, err := p.cross()
		if err != nil {
			return nil, err
		}
		for _, t := range expanded {
			key := termKey(t)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			terms = append(terms, t)
		}

		tok, ok := p.peek()
		if !ok || tok.kind != tokenPlus {
			return terms, nil
		}
		p.pos++
	}
}

// cross parses "factor (* factor)*" and expands the crossing into one term
// per non-empty subset of the factors, mains first.
func (p *parser) cross() ([]design.Term, error) {
	first, err := p.chain()
	if err != nil {
		return nil, err
	}
	factors := []factor{first}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenStar {
			break
		}
		p.pos++
		f, err := p.chain()
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}

	if len(factors) == 1 && factors[0].one {
		// A bare "1" keeps the implicit intercept and adds no term.
		return nil, nil
	}
	for _, f := range factors {
		if f.one {
			return nil, errors.NewValueError("formula.Parse",
				"the intercept token '1' cannot appear in an interaction or crossing")
		}
	}
	return expandCrossing(factors), nil
}

// factor is one multiplicand of a crossing: a chain of predictors joined by
// ':' or the literal intercept token "1".
type factor struct {
	predictors []string
	one        bool
}

// chain parses "name (: name)*".
func (p *parser) chain() (factor, error) {
	tok, ok := p.next()
	if !ok {
		return factor{}, p.errEnd()
	}
	if tok.kind != tokenIdent {
		return factor{}, p.errorf(tok.pos, "expected a predictor name, got %q", tok.text)
	}
	if tok.text == "0" {
		return factor{}, errors.NewValueError("formula.Parse",
			"the zero-intercept token '0' is not supported; suppress the intercept with design.WithoutIntercept()")
	}
	names := []string{tok.text}
	for {
		sep, ok := p.peek()
		if !ok || sep.kind != tokenColon {
			break
		}
		p.pos++
		part, ok := p.next()
		if !ok {
			return factor{}, p.errEnd()
		}
		if part.kind != tokenIdent {
			return factor{}, p.errorf(part.pos, "expected a predictor name after ':', got %q", part.text)
		}
		if part.text == "0" || part.text == "1" {
			return factor{}, errors.NewValueError("formula.Parse",
				"the intercept token '"+part.text+"' cannot appear in an interaction")
		}
		names = append(names, part.text)
	}
	if names[0] == "1" {
		if len(names) > 1 {
			return factor{}, errors.NewValueError("formula.Parse",
				"the intercept token '1' cannot appear in an interaction")
		}
		return factor{one: true}, nil
	}
	return factor{predictors: names}, nil
}

// expandCrossing turns factors f1 * ... * fn into one term per non-empty
// subset, ordered by subset size and then by factor position, matching the
// conventional a + b + a:b reading of "a*b".
func expandCrossing(factors []factor) []design.Term {
	n := len(factors)
	var terms []design.Term
	for size := 1; size <= n; size++ {
		for mask := 1; mask < 1<<n; mask++ {
			if bits.OnesCount(uint(mask)) != size {
				continue
			}
			var names []string
			used := make(map[string]struct{})
			for i := 0; i < n; i++ {
				if mask&(1<<i) == 0 {
					continue
				}
				for _, name := range factors[i].predictors {
					if _, dup := used[name]; dup {
						continue
					}
					used[name] = struct{}{}
					names = append(names, name)
				}
			}
			if len(names) == 1 {
				terms = append(terms, design.MainEffect(names[0]))
			} else {
				terms = append(terms, design.Interaction(names...))
			}
		}
	}
	return terms
}

// termKey canonicalizes a term for duplicate detection; predictor order
// inside an interaction does not distinguish terms.
func termKey(t design.Term) string {
	names := t.Predictors()
	sort.Strings(names)
	return strings.Join(names, ":")
}
