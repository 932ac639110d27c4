package ignoretree

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseRule_SkippedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"spaces only", "   "},
		{"tabs only", "\t\t"},
		{"comment", "# build artifacts"},
		{"comment no space", "#comment"},
		{"bare hash", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseRule("/repo/.aiignore", 1, tt.line)
			if err != nil {
				t.Fatalf("parseRule(%q) error: %v", tt.line, err)
			}
			if r != nil {
				t.Errorf("parseRule(%q) = %v, want nil", tt.line, r)
			}
		})
	}
}

func TestParseRule_Negation(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantNegated bool
		matches     string
	}{
		{"negated", "!important.log", true, "important.log"},
		{"plain", "important.log", false, "important.log"},
		{"escaped bang is literal", "\\!readme", false, "!readme"},
		{"escaped hash is literal", "\\#notes", false, "#notes"},
		{"negated escaped hash", "!\\#notes", true, "#notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseRule("/repo/.aiignore", 1, tt.line)
			if err != nil {
				t.Fatalf("parseRule(%q) error: %v", tt.line, err)
			}
			if r.Negated != tt.wantNegated {
				t.Errorf("parseRule(%q).Negated = %v, want %v", tt.line, r.Negated, tt.wantNegated)
			}
			if !r.pattern.Matches(tt.matches) {
				t.Errorf("parseRule(%q) does not match %q", tt.line, tt.matches)
			}
		})
	}
}

func TestParseRule_Flags(t *testing.T) {
	tests := []struct {
		line         string
		wantDirOnly  bool
		wantBasename bool
		wantAnchored bool
	}{
		{"build/", true, true, false},
		{"build", false, true, false},
		{"src/build/", true, false, false},
		{"src/build", false, false, false},
		{"/config.yml", false, false, true},
		{"/src/config.yml", false, false, true},
		{"secret.json", false, true, false},
		{"!build/", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r, err := parseRule("/repo/.aiignore", 1, tt.line)
			if err != nil {
				t.Fatalf("parseRule(%q) error: %v", tt.line, err)
			}
			if r.DirOnly != tt.wantDirOnly {
				t.Errorf("DirOnly = %v, want %v", r.DirOnly, tt.wantDirOnly)
			}
			if r.BasenameOnly != tt.wantBasename {
				t.Errorf("BasenameOnly = %v, want %v", r.BasenameOnly, tt.wantBasename)
			}
			if r.Anchored != tt.wantAnchored {
				t.Errorf("Anchored = %v, want %v", r.Anchored, tt.wantAnchored)
			}
		})
	}
}

func TestParseRule_TrailingWhitespace(t *testing.T) {
	// Plain trailing whitespace is stripped; an escaped final space
	// survives with one layer of escaping removed.
	r, err := parseRule("/repo/.aiignore", 1, "foo   ")
	if err != nil {
		t.Fatal(err)
	}
	if !r.pattern.Matches("foo") || r.pattern.Matches("foo ") {
		t.Errorf("trailing whitespace not stripped: %v", r)
	}

	r, err = parseRule("/repo/.aiignore", 1, "foo\\ ")
	if err != nil {
		t.Fatal(err)
	}
	if !r.pattern.Matches("foo ") {
		t.Errorf("escaped trailing space not preserved: %v", r)
	}
}

func TestParseRule_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"unclosed bracket", "a[b", ErrUnclosedBracket},
		{"bare negation", "!", ErrEmptyPattern},
		{"bare slash", "/", ErrEmptyPattern},
		{"anchored directory of nothing", "//", ErrEmptyPattern},
		{"trailing escape", "foo\\", ErrTrailingEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseRule("/repo/.aiignore", 7, tt.line)
			if r != nil {
				t.Errorf("parseRule(%q) returned rule alongside error", tt.line)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parseRule(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("parseRule(%q) error is not a *ParseError: %v", tt.line, err)
			}
			if perr.Path != "/repo/.aiignore" || perr.Line != 7 || perr.Pattern != tt.line {
				t.Errorf("ParseError location = %s:%d %q, want /repo/.aiignore:7 %q",
					perr.Path, perr.Line, perr.Pattern, tt.line)
			}
		})
	}
}

func TestParseRuleSet_SkipsBadLines(t *testing.T) {
	content := []byte("*.log\n\n# comment\na[b\n!keep.log\n")
	rs := parseRuleSet("/repo/.aiignore", content, log.New(io.Discard))

	if len(rs.Rules) != 2 {
		t.Fatalf("got %d rules, want 2: %v", len(rs.Rules), rs.Rules)
	}
	if rs.Rules[0].Line != 1 || rs.Rules[1].Line != 5 {
		t.Errorf("rule lines = %d, %d, want 1, 5", rs.Rules[0].Line, rs.Rules[1].Line)
	}
	if !rs.Rules[1].Negated {
		t.Errorf("line 5 should be negated")
	}
}

func TestParseRuleSet_NormalizesContent(t *testing.T) {
	// BOM and CRLF endings must not leak into patterns.
	content := []byte("\xEF\xBB\xBF*.log\r\nbuild/\r\n")
	rs := parseRuleSet("/repo/.aiignore", content, log.New(io.Discard))

	if len(rs.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rs.Rules))
	}
	if !rs.Rules[0].pattern.Matches("debug.log") {
		t.Errorf("BOM not stripped from first pattern")
	}
	if !rs.Rules[1].DirOnly {
		t.Errorf("CR residue broke the trailing-slash flag")
	}
}
