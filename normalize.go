package ignoretree

import (
	"bytes"
	"runtime"
	"strings"
)

// normalizePath cleans a target or candidate path for matching:
// Windows separators become / (on Windows only, where \ cannot appear
// in filenames), duplicate slashes collapse, leading ./ prefixes and a
// trailing slash are removed.
func normalizePath(p string) string {
	if runtime.GOOS == "windows" {
		p = strings.ReplaceAll(p, "\\", "/")
	}

	if strings.Contains(p, "//") {
		var b strings.Builder
		b.Grow(len(p))
		prevSlash := false
		for i := 0; i < len(p); i++ {
			if p[i] == '/' {
				if !prevSlash {
					b.WriteByte('/')
				}
				prevSlash = true
				continue
			}
			b.WriteByte(p[i])
			prevSlash = false
		}
		p = b.String()
	}

	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}

	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}

	return p
}

// normalizeContent prepares raw ignore-file bytes for line splitting:
// strips a UTF-8 BOM and folds CRLF and lone CR line endings to LF.
func normalizeContent(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	for len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	content = bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))

	return content
}

// trimTrailingWhitespace removes trailing spaces and tabs from a line.
// A backslash-escaped final space survives with its escape consumed:
//
//	"foo "    -> "foo"
//	"foo\ "   -> "foo "
//	"foo\\ "  -> "foo\\"
//	"foo\\\ " -> "foo\\ "
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	if end == len(line) {
		return line
	}

	// An odd run of backslashes before the whitespace escapes the first
	// trimmed space.
	bs := 0
	for i := end - 1; i >= 0 && line[i] == '\\'; i-- {
		bs++
	}
	if bs%2 == 1 && line[end] == ' ' {
		return line[:end-1] + " "
	}

	return line[:end]
}
