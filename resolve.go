package ignoretree

import (
	"io"
	"path"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Config enumerates the resolution policy supplied by the host.
type Config struct {
	// IgnoreFilenames are the ignore-file names looked up at each
	// directory level, in priority order (e.g. ".aiignore", ".ignore").
	IgnoreFilenames []string

	// BoundaryMarker is the directory entry whose presence marks the
	// boundary root (e.g. ".git"). The marker may be a file or a
	// directory.
	BoundaryMarker string

	// RequireBoundary disables matching entirely when no boundary root
	// is found. When false, resolution falls back to the target's own
	// directory, matching by filename alone.
	RequireBoundary bool

	// GlobalIgnoreFile is an optional user-level excludes file evaluated
	// before any in-tree ignore file, scoped to the boundary root. A
	// leading ~ or ~user and $VAR references are expanded. Empty
	// disables the feature.
	GlobalIgnoreFile string
}

// Resolver answers a single question: is this absolute path ignored,
// and if so by which rule. It is safe for concurrent use; all shared
// state lives in the cache, which serializes per-call.
type Resolver struct {
	cfg    Config
	fsys   afero.Fs
	cache  *Cache
	logger *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs sets the filesystem the resolver and its cache read through.
// Defaults to the host OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(r *Resolver) { r.fsys = fsys }
}

// WithLogger sets the destination for advisory diagnostics. Defaults to
// a discarding logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithCache shares an existing cache, typically one per process across
// several resolvers.
func WithCache(cache *Cache) Option {
	return func(r *Resolver) { r.cache = cache }
}

// NewResolver builds a resolver for the given policy.
func NewResolver(cfg Config, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		fsys:   afero.NewOsFs(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache(r.fsys, r.logger)
	}
	return r
}

// IsIgnored reports whether target is ignored.
func (r *Resolver) IsIgnored(target string) bool {
	return r.Resolve(target) != nil
}

// Resolve returns the rule that ignores target, or nil when target is
// not ignored. target must be an absolute path.
//
// Resolution never fails: missing ignore files, unreadable files and
// configuration inconsistencies degrade to "not ignored" with a
// diagnostic.
func (r *Resolver) Resolve(target string) *Rule {
	target = normalizePath(target)
	if target == "" || len(r.cfg.IgnoreFilenames) == 0 {
		return nil
	}
	dir := path.Dir(target)

	root, ok := findBoundaryRoot(r.fsys, dir, r.cfg.BoundaryMarker)
	if !ok {
		if r.cfg.RequireBoundary {
			return nil
		}
		return r.resolveUnrooted(target, dir)
	}

	chain, ok := r.buildChain(target, dir, root)
	if !ok {
		return nil
	}
	targetIsDir := isDir(r.fsys, target)

	if rule := r.applyGlobal(chain, targetIsDir); rule != nil {
		return rule
	}

	// Outermost level first. An ignored directory is opaque: the first
	// positive verdict on any chain entry ends the resolution, so a
	// deeper ignore file never gets to re-include anything beneath it.
	for li := 0; li < len(chain)-1; li++ {
		level := chain[li]
		for _, name := range r.cfg.IgnoreFilenames {
			rs := r.cache.Load(path.Join(level, name))
			if rs == nil {
				continue
			}
			if rule := r.applyRuleSet(rs, level, chain[li+1:], targetIsDir); rule != nil {
				return rule
			}
		}
	}
	return nil
}

// buildChain returns target's directory chain ordered outermost-first:
// root, ..., parent(target), target. A chain that cannot reach the root
// is a configuration inconsistency and resolves to "not ignored".
func (r *Resolver) buildChain(target, dir, root string) ([]string, bool) {
	if _, ok := relativePath(root, target); !ok {
		r.logger.Warn("target lies outside its boundary root",
			"target", target, "root", root)
		return nil, false
	}

	var chain []string
	for d := dir; ; d = path.Dir(d) {
		chain = append(chain, d)
		if d == root {
			break
		}
		if d == path.Dir(d) {
			r.logger.Warn("directory chain did not terminate at boundary root",
				"target", target, "root", root)
			return nil, false
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return append(chain, target), true
}

// applyRuleSet tests every chain entry below the rule set's level,
// outermost first. Entries before the last are ancestor directories by
// construction; only the last is the target itself.
func (r *Resolver) applyRuleSet(rs *RuleSet, levelDir string, candidates []string, targetIsDir bool) *Rule {
	for ci, cand := range candidates {
		candIsDir := ci < len(candidates)-1 || targetIsDir
		if rule := matchCandidate(rs, levelDir, cand, candIsDir); rule != nil {
			return rule
		}
	}
	return nil
}

// matchCandidate scans one rule set against one candidate in file
// order. The earliest non-negated accepting rule wins, unless a negated
// rule accepts the candidate anywhere in the scan: that settles the
// candidate as "not ignored" for this file and stops the scan, even
// over an earlier positive match. Later files and deeper levels are
// unaffected.
func matchCandidate(rs *RuleSet, levelDir, cand string, candIsDir bool) *Rule {
	var best *Rule
	for _, rule := range rs.Rules {
		if rule.DirOnly && !candIsDir {
			continue
		}

		var s string
		if rule.BasenameOnly {
			s = path.Base(cand)
		} else {
			rel, ok := relativePath(levelDir, cand)
			if !ok {
				continue
			}
			s = rel
		}

		if !rule.pattern.Matches(s) {
			continue
		}
		if rule.Negated {
			return nil
		}
		if best == nil {
			best = rule
		}
	}
	return best
}

// applyGlobal evaluates the user-level excludes file, if configured, as
// the outermost level scoped to the boundary root.
func (r *Resolver) applyGlobal(chain []string, targetIsDir bool) *Rule {
	if r.cfg.GlobalIgnoreFile == "" {
		return nil
	}

	p, err := expandUserPath(r.cfg.GlobalIgnoreFile)
	if err != nil {
		r.logger.Warn("cannot resolve global ignore file",
			"path", r.cfg.GlobalIgnoreFile, "err", err)
		return nil
	}

	rs := r.cache.Load(normalizePath(p))
	if rs == nil {
		return nil
	}
	return r.applyRuleSet(rs, chain[0], chain[1:], targetIsDir)
}

// resolveUnrooted handles the no-boundary fallback: only the target's
// own directory is consulted, and every rule is matched against the
// filename alone since no hierarchical chain exists to root it.
func (r *Resolver) resolveUnrooted(target, dir string) *Rule {
	base := path.Base(target)
	targetIsDir := isDir(r.fsys, target)

	for _, name := range r.cfg.IgnoreFilenames {
		rs := r.cache.Load(path.Join(dir, name))
		if rs == nil {
			continue
		}

		var best *Rule
		for _, rule := range rs.Rules {
			if rule.DirOnly && !targetIsDir {
				continue
			}
			if !rule.pattern.Matches(base) {
				continue
			}
			if rule.Negated {
				best = nil
				break
			}
			if best == nil {
				best = rule
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}
