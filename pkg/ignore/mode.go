package ignore

import (
	"fmt"

	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
)

// Mode decides where DockerStyle ignore files are honored. It is set once per
// build and shared by every service.
type Mode int

const (
	// SingleRoot honors only the .dockerignore file at the project root.
	SingleRoot Mode = iota
	// MultiRoot honors a .dockerignore file at each service root.
	MultiRoot
)

func (m Mode) String() string {
	switch m {
	case SingleRoot:
		return "single-root"
	case MultiRoot:
		return "multi-root"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Applicable reports whether an entry may filter the files of the service
// rooted at serviceRoot. GitStyle entries always may. A project-root
// .dockerignore in multi-root mode only filters a service rooted at the
// project root.
func Applicable(e Entry, projectRoot, serviceRoot string, mode Mode) bool {
	if e.Dialect == GitStyle {
		return true
	}
	origin := ctxpath.Normalize(e.OriginDir)
	switch mode {
	case MultiRoot:
		return origin == ctxpath.Normalize(serviceRoot)
	default:
		return origin == ctxpath.Normalize(projectRoot)
	}
}

// Honored reports whether a DockerStyle file in originDir is used by at
// least one of the given service roots, or sits at the project root.
func Honored(originDir, projectRoot string, serviceRoots []string, mode Mode) bool {
	origin := ctxpath.Normalize(originDir)
	if origin == ctxpath.Normalize(projectRoot) {
		return true
	}
	if mode != MultiRoot {
		return false
	}
	for _, root := range serviceRoots {
		if origin == ctxpath.Normalize(root) {
			return true
		}
	}
	return false
}
