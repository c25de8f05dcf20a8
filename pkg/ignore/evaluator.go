package ignore

import (
	"path"
	"sort"
	"strings"

	"github.com/moby/patternmatcher"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/stevedore-dev/stevedore/pkg/errors"
	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
)

// Scope is what an Evaluator needs to know about the service it filters for.
type Scope struct {
	ProjectRoot string
	ServiceRoot string
	Mode        Mode
	// MetadataDirs are directory names whose contents are never excluded.
	MetadataDirs []string
}

// gitRule is one compiled GitStyle entry. Negation is handled here rather
// than by the library so that each entry can be matched against a path
// relative to its own origin.
type gitRule struct {
	origin  string
	negate  bool
	matcher *gitignore.GitIgnore
}

// dockerRules are the DockerStyle entries of a single ignore file.
type dockerRules struct {
	origin  string
	matcher *patternmatcher.PatternMatcher
}

// Evaluator decides, per candidate path, whether a file belongs in the build
// context of one service. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	scope  Scope
	git    []gitRule
	docker []dockerRules
}

// NewEvaluator compiles the entries of store that are applicable to scope.
// Patterns are compiled once here; IsIncluded only selects among them.
func NewEvaluator(store *Store, scope Scope) (*Evaluator, error) {
	scope.ProjectRoot = ctxpath.Normalize(scope.ProjectRoot)
	scope.ServiceRoot = ctxpath.Normalize(scope.ServiceRoot)
	ev := &Evaluator{scope: scope}

	for _, e := range store.Entries(GitStyle) {
		pattern, negate := e.Pattern, false
		if strings.HasPrefix(pattern, "!") {
			pattern, negate = pattern[1:], true
		}
		ev.git = append(ev.git, gitRule{
			origin:  e.OriginDir,
			negate:  negate,
			matcher: gitignore.CompileIgnoreLines(pattern),
		})
	}
	// Parents before children, so nested files override the ones above them
	sort.SliceStable(ev.git, func(i, j int) bool {
		return ctxpath.Depth(ev.git[i].origin) < ctxpath.Depth(ev.git[j].origin)
	})

	var origins []string
	grouped := map[string][]string{}
	for _, e := range store.Entries(DockerStyle) {
		if !Applicable(e, scope.ProjectRoot, scope.ServiceRoot, scope.Mode) {
			continue
		}
		if _, ok := grouped[e.OriginDir]; !ok {
			origins = append(origins, e.OriginDir)
		}
		grouped[e.OriginDir] = append(grouped[e.OriginDir], e.Pattern)
	}
	for _, origin := range origins {
		pm, err := patternmatcher.New(grouped[origin])
		if err != nil {
			return nil, errors.Configuration("", path.Join(origin, DockerIgnoreFilename), err)
		}
		ev.docker = append(ev.docker, dockerRules{origin: origin, matcher: pm})
	}

	return ev, nil
}

// IsIncluded reports whether the file at candidate (an absolute path, or one
// relative to the same base as the scope's roots) belongs in the context.
func (ev *Evaluator) IsIncluded(candidate string) bool {
	return !ev.excluded(ctxpath.Normalize(candidate), false)
}

// IsDirIncluded is IsIncluded for a directory.
func (ev *Evaluator) IsDirIncluded(dir string) bool {
	return !ev.excluded(ctxpath.Normalize(dir), true)
}

// CanSkipDir reports whether the walk may skip dir without visiting its
// contents: it must be excluded and no rule in scope may re-include a file
// beneath it.
func (ev *Evaluator) CanSkipDir(dir string) bool {
	dir = ctxpath.Normalize(dir)
	if !ev.excluded(dir, true) {
		return false
	}
	for _, r := range ev.git {
		if r.negate && (ctxpath.Contains(r.origin, dir) || ctxpath.Contains(dir, r.origin)) {
			return false
		}
	}
	for _, r := range ev.docker {
		if ctxpath.Contains(r.origin, dir) && r.matcher.Exclusions() {
			return false
		}
	}
	return true
}

// IsMetadataPath reports whether candidate lies inside one of the reserved
// metadata directories of the service.
func (ev *Evaluator) IsMetadataPath(candidate string, isDir bool) bool {
	rel, ok := ctxpath.Rel(ev.scope.ServiceRoot, ctxpath.Normalize(candidate))
	if !ok || rel == "." {
		return false
	}
	segments := strings.Split(rel, "/")
	if !isDir {
		segments = segments[:len(segments)-1]
	}
	for _, segment := range segments {
		for _, name := range ev.scope.MetadataDirs {
			if segment == name {
				return true
			}
		}
	}
	return false
}

func (ev *Evaluator) excluded(candidate string, isDir bool) bool {
	if ev.IsMetadataPath(candidate, isDir) {
		return false
	}
	m := ev.matcherFor(candidate)
	return m.gitExcludes(candidate, isDir) || m.dockerExcludes(candidate)
}

// matcher is the set of rules that apply to one candidate path.
type matcher struct {
	git    []gitRule
	docker []dockerRules
}

func (ev *Evaluator) matcherFor(candidate string) matcher {
	var m matcher
	for _, r := range ev.git {
		if r.origin != candidate && ctxpath.Contains(r.origin, candidate) {
			m.git = append(m.git, r)
		}
	}
	for _, r := range ev.docker {
		if r.origin != candidate && ctxpath.Contains(r.origin, candidate) {
			m.docker = append(m.docker, r)
		}
	}
	return m
}

// gitExcludes applies the rules in order; the last rule that matches wins.
func (m matcher) gitExcludes(candidate string, isDir bool) bool {
	excluded := false
	for _, r := range m.git {
		rel, _ := ctxpath.Rel(r.origin, candidate)
		if isDir {
			rel += "/"
		}
		if r.matcher.MatchesPath(rel) {
			excluded = !r.negate
		}
	}
	return excluded
}

func (m matcher) dockerExcludes(candidate string) bool {
	for _, r := range m.docker {
		rel, _ := ctxpath.Rel(r.origin, candidate)
		matched, err := r.matcher.MatchesOrParentMatches(rel)
		if err == nil && matched {
			return true
		}
	}
	return false
}
