// Package peg is a small parsing-expression-grammar combinator library
// operating over a flat token slice: terminal token matching by regex,
// ordered choice, sequence, optional, zero-or-more repetition, and a
// forgetable wrapper that matches but discards its result. Failure is a
// syntax error tagged with the offending lexeme; there is no backtracking
// across a successful Or branch.
package peg

import (
	"fmt"
	"regexp"
)

// Node is one parsed unit: a matched terminal token (Kind = token kind,
// Text = raw lexeme) or a named group of child nodes produced by Group.
// Nodes produced by Optional-with-no-match or Forgetable are never
// materialized in a parent's Children list — callers see a clean,
// already-purged tree, mirroring the reference's Instruction.purge step.
type Node struct {
	Kind     string
	Text     string
	Children []Node
}

// Get returns the first child of the given kind, or the zero Node and
// false if none matched.
func (n Node) Get(kind string) (Node, bool) {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c, true
		}
	}
	return Node{}, false
}

// All returns every child of the given kind, in order.
func (n Node) All(kind string) []Node {
	var out []Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// SyntaxError reports the offending lexeme (empty when the input ran out).
type SyntaxError struct {
	Lexeme string
}

func (e *SyntaxError) Error() string {
	if e.Lexeme == "" {
		return "syntax error: nothing to parse"
	}
	return fmt.Sprintf("syntax error at %q", e.Lexeme)
}

// Matcher consumes a prefix of tokens, returning the matched Node and the
// remaining tokens, or an error if it does not match at this position.
type Matcher interface {
	Match(tokens []string) (Node, []string, error)
}

type MatcherFunc func(tokens []string) (Node, []string, error)

func (f MatcherFunc) Match(tokens []string) (Node, []string, error) { return f(tokens) }

// Token matches exactly one lexeme against pattern (anchored, full-match),
// producing a leaf Node tagged kind.
func Token(kind, pattern string) Matcher {
	re := regexp.MustCompile("^(?:" + pattern + ")$")
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		if len(tokens) == 0 {
			return Node{}, nil, &SyntaxError{}
		}
		if re.MatchString(tokens[0]) {
			return Node{Kind: kind, Text: tokens[0]}, tokens[1:], nil
		}
		return Node{}, nil, &SyntaxError{Lexeme: tokens[0]}
	})
}

// Or tries each alternative left-to-right and commits to the first that
// matches; later alternatives are never attempted once one succeeds.
func Or(items ...Matcher) Matcher {
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		for _, m := range items {
			if n, rest, err := m.Match(tokens); err == nil {
				return n, rest, nil
			}
		}
		lex := ""
		if len(tokens) > 0 {
			lex = tokens[0]
		}
		return Node{}, nil, &SyntaxError{Lexeme: lex}
	})
}

// appendMatch implements the reference's "if isinstance(match, list): matches
// += match else: matches.append(match)" rule: an anonymous node (Kind=="",
// produced by a nested Sequence/Optional/Multiple) is spliced in; an empty
// node (Optional-no-match or Forgetable) contributes nothing; anything else
// (a named Token or Group) is appended as one value.
func appendMatch(flat []Node, n Node) []Node {
	if n.Kind != "" {
		return append(flat, n)
	}
	if n.Text == "" && n.Children == nil {
		return flat // purged: Optional-no-match / Forgetable
	}
	return append(flat, n.Children...)
}

// Sequence requires every item to match in order, flattening each item's
// produced children into one list.
func Sequence(items ...Matcher) Matcher {
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		var flat []Node
		rest := tokens
		for _, m := range items {
			n, r, err := m.Match(rest)
			if err != nil {
				return Node{}, nil, err
			}
			rest = r
			flat = appendMatch(flat, n)
		}
		return Node{Children: flat}, rest, nil
	})
}

// Optional matches x if possible; on failure it consumes nothing and
// contributes no node to its parent sequence.
func Optional(x Matcher) Matcher {
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		if n, rest, err := x.Match(tokens); err == nil {
			return n, rest, nil
		}
		return Node{}, tokens, nil
	})
}

// Multiple greedily matches x zero or more times, flattening each match's
// children into one anonymous Children list — spliced into a parent
// Sequence exactly like a nested Sequence or Optional would be.
func Multiple(x Matcher) Matcher {
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		var all []Node
		rest := tokens
		for {
			n, r, err := x.Match(rest)
			if err != nil {
				break
			}
			rest = r
			all = appendMatch(all, n)
		}
		if all == nil {
			return Node{}, rest, nil
		}
		return Node{Children: all}, rest, nil
	})
}

// Forgetable matches x but discards the result: it still consumes tokens
// and can still fail, but contributes nothing to the parse tree.
func Forgetable(x Matcher) Matcher {
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		_, rest, err := x.Match(tokens)
		if err != nil {
			return Node{}, nil, err
		}
		return Node{}, rest, nil
	})
}

// Group matches inner and wraps its flattened children into a single node
// tagged kind, so the result can be addressed as one production in an
// enclosing Or/Sequence.
func Group(kind string, inner Matcher) Matcher {
	return MatcherFunc(func(tokens []string) (Node, []string, error) {
		n, rest, err := inner.Match(tokens)
		if err != nil {
			return Node{}, nil, err
		}
		return Node{Kind: kind, Children: n.Children}, rest, nil
	})
}
