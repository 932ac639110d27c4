package ignoretree

import (
	"errors"
	"fmt"
	"strings"
)

// Compilation errors. A pattern that fails to compile produces no
// matcher at all; there is no "accepts nothing" fallback.
var (
	ErrEmptyPattern    = errors.New("empty pattern")
	ErrUnclosedBracket = errors.New("unclosed bracket set")
	ErrTrailingEscape  = errors.New("trailing escape with nothing to escape")
	ErrUnknownClass    = errors.New("unknown character class")
)

// Pattern is a compiled matcher for one glob in the ignore dialect.
// It is immutable once built; two Patterns compiled from the same text
// are behaviorally indistinguishable.
type Pattern struct {
	source string
	head   *node
}

// Compile parses a glob into a Pattern.
//
// The dialect: literal runs, * (any run of non-separator characters
// within one segment), ** (zero or more whole segments when isolated
// between separators; otherwise degrades to *), ? (one non-separator
// character), bracket sets with ^ negation, ranges and POSIX classes,
// and \ escaping. The input must already use / as its sole separator.
func Compile(pattern string) (*Pattern, error) {
	toks, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}
	return &Pattern{source: pattern, head: buildChain(toks)}, nil
}

// Matches reports whether candidate matches the whole pattern.
// Matching is anchored at both ends; there is no substring search.
func (p *Pattern) Matches(candidate string) bool {
	return p.head.match(candidate, 0)
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.source }

// tokKind tags one parsed unit of a pattern. The token set is closed;
// buildChain switches over every kind exhaustively.
type tokKind uint8

const (
	tokLiteral  tokKind = iota // run of literal characters
	tokSep                     // "/"
	tokStar                    // "*", or "**" glued to text within a segment
	tokGlobstar                // "**" isolated between separators or pattern edges
	tokQuestion                // "?"
	tokSet                     // "[...]"
)

type token struct {
	kind tokKind
	text string   // tokLiteral only
	set  *charSet // tokSet only
}

// tokenize splits a pattern into tokens, resolving escapes and keeping
// segment boundaries as explicit tokens.
func tokenize(pattern string) ([]token, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	var toks []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, token{kind: tokLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '/':
			flush()
			toks = append(toks, token{kind: tokSep})
			i++
		case '\\':
			if i+1 >= len(pattern) {
				return nil, ErrTrailingEscape
			}
			lit.WriteByte(pattern[i+1])
			i += 2
		case '*':
			flush()
			j := i
			for j < len(pattern) && pattern[j] == '*' {
				j++
			}
			// ** counts as a globstar only when it occupies a whole
			// segment; a**b degrades to a single-segment star.
			atSegStart := i == 0 || pattern[i-1] == '/'
			atSegEnd := j == len(pattern) || pattern[j] == '/'
			if j-i >= 2 && atSegStart && atSegEnd {
				toks = append(toks, token{kind: tokGlobstar})
			} else {
				toks = append(toks, token{kind: tokStar})
			}
			i = j
		case '?':
			flush()
			toks = append(toks, token{kind: tokQuestion})
			i++
		case '[':
			flush()
			set, n, err := parseCharSet(pattern[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokSet, set: set})
			i += n
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	return toks, nil
}

// nodeOp selects the behavior of one combinator node. Wildcards are
// search operators over their continuation: a star scans forward within
// the segment for the first position where the rest of the chain
// matches, a globstar scans whole segment/ units.
type nodeOp uint8

const (
	opEnd      nodeOp = iota // accept only at end of candidate
	opLiteral                // consume an exact byte run
	opSep                    // consume one '/'
	opAnyChar                // '?': one non-separator byte
	opSet                    // bracket set: one byte
	opStarScan               // '*': any run of non-separator bytes
	opSegScan                // '**/': zero or more whole "segment/" units
	opMatchAll               // '**' as the entire pattern
	opDirTail                // trailing '/**': the directory itself or anything below
)

// node is one link of the compiled matcher chain. Each node owns its
// continuation, so the chain is built bottom-up from the last token.
type node struct {
	op   nodeOp
	lit  string
	set  *charSet
	next *node
}

// buildChain folds the token sequence right-to-left into a matcher
// chain: the node for each token answers "does the pattern suffix
// starting at this token match here".
func buildChain(toks []token) *node {
	chain := &node{op: opEnd}
	for i := len(toks) - 1; i >= 0; i-- {
		switch t := toks[i]; t.kind {
		case tokLiteral:
			chain = &node{op: opLiteral, lit: t.text, next: chain}
		case tokSep:
			chain = &node{op: opSep, next: chain}
		case tokQuestion:
			chain = &node{op: opAnyChar, next: chain}
		case tokSet:
			chain = &node{op: opSet, set: t.set, next: chain}
		case tokStar:
			chain = &node{op: opStarScan, next: chain}
		case tokGlobstar:
			switch {
			case len(toks) == 1:
				// "**" is the whole pattern.
				chain = &node{op: opMatchAll}
			case i == len(toks)-1:
				// Trailing "/**": fold the preceding separator in too.
				chain = &node{op: opDirTail}
				i--
			default:
				// "**/": the folded separator belongs to the skipped
				// segment units, so splice past it. The separator may
				// already be gone when a trailing globstar consumed it.
				next := chain
				if next.op == opSep {
					next = next.next
				}
				chain = &node{op: opSegScan, next: next}
			}
		}
	}
	return chain
}

// match reports whether the chain starting at n matches s from offset i.
func (n *node) match(s string, i int) bool {
	switch n.op {
	case opEnd:
		return i == len(s)
	case opLiteral:
		if !strings.HasPrefix(s[i:], n.lit) {
			return false
		}
		return n.next.match(s, i+len(n.lit))
	case opSep:
		return i < len(s) && s[i] == '/' && n.next.match(s, i+1)
	case opAnyChar:
		return i < len(s) && s[i] != '/' && n.next.match(s, i+1)
	case opSet:
		return i < len(s) && n.set.contains(s[i]) && n.next.match(s, i+1)
	case opStarScan:
		for k := i; ; k++ {
			if n.next.match(s, k) {
				return true
			}
			if k >= len(s) || s[k] == '/' {
				return false
			}
		}
	case opSegScan:
		for k := i; ; {
			if n.next.match(s, k) {
				return true
			}
			j := strings.IndexByte(s[k:], '/')
			if j < 0 {
				return false
			}
			k += j + 1
		}
	case opMatchAll:
		return true
	case opDirTail:
		return i == len(s) || s[i] == '/'
	}
	return false
}

// charSet is one bracket-set token; single members are stored as
// degenerate ranges. Membership deliberately says nothing about '/':
// separators are kept out of set positions by the surrounding segment
// tokens, not by the set itself, so a negated set can in principle
// accept one (a known gap inherited from the dialect).
type charSet struct {
	negated bool
	ranges  []charRange
	classes []posixClass
}

type charRange struct{ lo, hi byte }

func (cs *charSet) contains(c byte) bool {
	in := false
	for _, r := range cs.ranges {
		if c >= r.lo && c <= r.hi {
			in = true
			break
		}
	}
	if !in {
		for _, cl := range cs.classes {
			if classContains(cl, c) {
				in = true
				break
			}
		}
	}
	if cs.negated {
		return !in
	}
	return in
}

// parseCharSet parses a bracket set from s, which begins at the '['.
// Returns the set and the number of bytes consumed.
func parseCharSet(s string) (*charSet, int, error) {
	set := &charSet{}
	i := 1
	if i < len(s) && s[i] == '^' {
		set.negated = true
		i++
	}

	first := true
	for {
		if i >= len(s) {
			return nil, 0, ErrUnclosedBracket
		}
		c := s[i]

		// A ']' in first member position is a literal member.
		if c == ']' && !first {
			return set, i + 1, nil
		}
		first = false

		// POSIX class: [:name:]
		if c == '[' && i+1 < len(s) && s[i+1] == ':' {
			end := strings.Index(s[i+2:], ":]")
			if end < 0 {
				return nil, 0, ErrUnclosedBracket
			}
			name := s[i+2 : i+2+end]
			class, ok := classByName(name)
			if !ok {
				return nil, 0, fmt.Errorf("%w: [:%s:]", ErrUnknownClass, name)
			}
			set.classes = append(set.classes, class)
			i += end + 4
			continue
		}

		if c == '\\' {
			if i+1 >= len(s) {
				return nil, 0, ErrTrailingEscape
			}
			c = s[i+1]
			i += 2
		} else {
			i++
		}

		// Range lo-hi, unless the '-' is last before ']' (then literal).
		if i+1 < len(s) && s[i] == '-' && s[i+1] != ']' {
			hi := s[i+1]
			n := 2
			if hi == '\\' {
				if i+2 >= len(s) {
					return nil, 0, ErrTrailingEscape
				}
				hi = s[i+2]
				n = 3
			}
			set.ranges = append(set.ranges, charRange{lo: c, hi: hi})
			i += n
			continue
		}

		set.ranges = append(set.ranges, charRange{lo: c, hi: c})
	}
}

// posixClass identifies one of the twelve supported [:name:] classes,
// defined over single-byte characters.
type posixClass uint8

const (
	classAlnum posixClass = iota
	classAlpha
	classBlank
	classCntrl
	classDigit
	classGraph
	classLower
	classPrint
	classPunct
	classSpace
	classUpper
	classXdigit
)

func classByName(name string) (posixClass, bool) {
	switch name {
	case "alnum":
		return classAlnum, true
	case "alpha":
		return classAlpha, true
	case "blank":
		return classBlank, true
	case "cntrl":
		return classCntrl, true
	case "digit":
		return classDigit, true
	case "graph":
		return classGraph, true
	case "lower":
		return classLower, true
	case "print":
		return classPrint, true
	case "punct":
		return classPunct, true
	case "space":
		return classSpace, true
	case "upper":
		return classUpper, true
	case "xdigit":
		return classXdigit, true
	}
	return 0, false
}

func classContains(cl posixClass, c byte) bool {
	switch cl {
	case classAlnum:
		return isAlphaByte(c) || isDigitByte(c)
	case classAlpha:
		return isAlphaByte(c)
	case classBlank:
		return c == ' ' || c == '\t'
	case classCntrl:
		return c < 0x20 || c == 0x7f
	case classDigit:
		return isDigitByte(c)
	case classGraph:
		return c > 0x20 && c < 0x7f
	case classLower:
		return c >= 'a' && c <= 'z'
	case classPrint:
		return c >= 0x20 && c < 0x7f
	case classPunct:
		return c > 0x20 && c < 0x7f && !isAlphaByte(c) && !isDigitByte(c)
	case classSpace:
		return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
	case classUpper:
		return c >= 'A' && c <= 'Z'
	case classXdigit:
		return isDigitByte(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	return false
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isAlphaByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
