package ignoretree

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// expandUserPath expands environment variables and a leading ~ or ~user
// in a configured ignore-file path. Hosts typically set
// Config.GlobalIgnoreFile to something like ~/.config/<tool>/ignore.
func expandUserPath(p string) (string, error) {
	p = os.ExpandEnv(p)
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}

	var userPart, rest string
	if i := strings.IndexByte(p, '/'); i >= 0 {
		userPart, rest = p[:i], p[i:]
	} else {
		userPart = p
	}

	var home string
	if userPart == "~" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		home = dir
	} else {
		u, err := user.Lookup(userPart[1:])
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", userPart, err)
		}
		home = u.HomeDir
	}

	return filepath.ToSlash(home) + rest, nil
}

// DefaultGlobalIgnorePath returns the XDG-conventional location of a
// user-level excludes file for tool: $XDG_CONFIG_HOME/<tool>/ignore,
// falling back to ~/.config/<tool>/ignore.
func DefaultGlobalIgnorePath(tool string) (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, tool, "ignore"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".config", tool, "ignore"), nil
}
