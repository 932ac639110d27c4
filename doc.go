// Package ignoretree decides whether a path is excluded by
// hierarchically-placed ignore files written in a gitignore-style glob
// dialect, and reports which rule excluded it.
//
// # Basic Usage
//
//	r := ignoretree.NewResolver(ignoretree.Config{
//	    IgnoreFilenames: []string{".aiignore"},
//	    BoundaryMarker:  ".git",
//	})
//
//	if rule := r.Resolve("/repo/src/secret.json"); rule != nil {
//	    // ignored; rule carries the file, line and raw text that matched
//	}
//
// # Resolution Model
//
// The resolver locates the nearest ancestor directory containing the
// boundary marker, then walks ignore files from that root down toward
// the target, outermost first. Each ignore file is matched against the
// chain entries below it, again outermost first. The first directory or
// file positively matched ends the resolution: an ignored directory is
// opaque, so an ignore file nested inside it can never re-include its
// contents. Without a boundary root, only the target's own directory is
// consulted and rules match the filename alone (or matching is disabled
// entirely, per Config.RequireBoundary).
//
// Parsed ignore files are cached process-wide, keyed by a filesystem
// identity fingerprint (mtime, size, inode, owner, mode); a change to
// any field forces a reparse. All filesystem access goes through an
// injectable afero.Fs, so resolution is fully testable in memory.
//
// # Supported Syntax
//
//   - Plain names: "debug.log" matches by filename at any depth
//   - Leading /: "/debug.log" matches only beside its ignore file
//   - Trailing /: "build/" applies to directories only
//   - Single star: "*.log", confined to one path segment
//   - Globstar: "a/**/c" skips whole segments; "a/**" covers a subtree
//   - ? for one non-separator character
//   - Bracket sets: "[a-c]", "[^a-c]", "[[:digit:]]"
//   - Escaping: "\*" and friends force literals
//   - Negation: "!important.log"
//
// # Divergences from git
//
// Negation is scanned differently than git's last-match-wins: within one
// file, a matched negation settles the candidate as not ignored and no
// other rule in that file overrides it. Combined with opaque ignored
// directories, results can differ from git for re-include setups.
package ignoretree
