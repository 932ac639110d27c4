package ignoretree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseError reports one ignore-file line that could not be compiled.
// It is advisory: the offending line is dropped and the rest of the
// file still loads.
type ParseError struct {
	Path    string // ignore file the line came from
	Line    int    // 1-based line number within it
	Pattern string // offending line text
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid pattern %q: %v", e.Path, e.Line, e.Pattern, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Rule is one effective (non-blank, non-comment) line of an ignore file.
type Rule struct {
	SourcePath string // absolute path of the ignore file
	Line       int    // 1-based line number within it
	RawText    string // original line, for diagnostics

	// Negated marks a line that began with an unescaped !.
	Negated bool

	// DirOnly marks a line that ended with an unescaped /: the rule
	// applies only to directories.
	DirOnly bool

	// BasenameOnly marks a pattern with no interior separator: it
	// matches by filename alone, at any depth below its ignore file.
	BasenameOnly bool

	// Anchored marks a line that began with /: it matches relative to
	// the ignore file's own directory only. Anchored rules are never
	// basename-only.
	Anchored bool

	pattern *Pattern
}

// String returns a debug rendering of the rule.
func (r *Rule) String() string {
	var flags []string
	if r.Negated {
		flags = append(flags, "negated")
	}
	if r.DirOnly {
		flags = append(flags, "dir-only")
	}
	if r.BasenameOnly {
		flags = append(flags, "basename")
	}
	if r.Anchored {
		flags = append(flags, "anchored")
	}

	s := fmt.Sprintf("%s:%d: %s", r.SourcePath, r.Line, r.RawText)
	if len(flags) > 0 {
		s += " [" + strings.Join(flags, ",") + "]"
	}
	return s
}

// RuleSet is the ordered sequence of rules parsed from one ignore file,
// in file order. It is created by the cache and read-only once published.
type RuleSet struct {
	Path  string
	Rules []*Rule
}

// parseRule turns one raw ignore-file line into a Rule.
// Blank lines and comments yield (nil, nil).
func parseRule(sourcePath string, lineNum int, raw string) (*Rule, error) {
	line := trimTrailingWhitespace(raw)
	if line == "" {
		return nil, nil
	}
	if strings.HasPrefix(line, "#") {
		return nil, nil
	}

	fail := func(err error) error {
		return &ParseError{Path: sourcePath, Line: lineNum, Pattern: raw, Err: err}
	}

	// \! escapes the bang; checked before ! so the escaped form stays a
	// literal first character.
	negated := false
	if strings.HasPrefix(line, "\\!") {
		line = line[1:]
	} else if strings.HasPrefix(line, "!") {
		negated = true
		line = line[1:]
	}

	// \# after the negation check, so !\#foo works.
	if strings.HasPrefix(line, "\\#") {
		line = line[1:]
	}

	dirOnly := false
	if endsWithUnescapedSlash(line) {
		dirOnly = true
		line = line[:len(line)-1]
	}

	anchored := false
	if strings.HasPrefix(line, "/") {
		anchored = true
		line = line[1:]
	}

	if line == "" {
		return nil, fail(ErrEmptyPattern)
	}

	p, err := Compile(line)
	if err != nil {
		return nil, fail(err)
	}

	return &Rule{
		SourcePath:   sourcePath,
		Line:         lineNum,
		RawText:      raw,
		Negated:      negated,
		DirOnly:      dirOnly,
		BasenameOnly: !anchored && !strings.Contains(line, "/"),
		Anchored:     anchored,
		pattern:      p,
	}, nil
}

// parseRuleSet parses whole ignore-file content. Lines that fail to
// compile are logged and skipped; the remainder of the file still loads.
func parseRuleSet(path string, content []byte, logger *log.Logger) *RuleSet {
	content = normalizeContent(content)

	rs := &RuleSet{Path: path}
	for i, line := range strings.Split(string(content), "\n") {
		r, err := parseRule(path, i+1, line)
		if err != nil {
			logger.Warn("skipping unparsable ignore rule", "err", err)
			continue
		}
		if r != nil {
			rs.Rules = append(rs.Rules, r)
		}
	}
	return rs
}

// endsWithUnescapedSlash reports whether line ends in a / that is not
// itself backslash-escaped.
func endsWithUnescapedSlash(line string) bool {
	if !strings.HasSuffix(line, "/") {
		return false
	}
	bs := 0
	for i := len(line) - 2; i >= 0 && line[i] == '\\'; i-- {
		bs++
	}
	return bs%2 == 0
}
