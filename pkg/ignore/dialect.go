// Package ignore resolves which files of a project belong in a build context.
//
// Two ignore-file dialects are understood: GitStyle (.gitignore, honored at
// any depth) and DockerStyle (.dockerignore, honored only at the project root
// or, in multi-root mode, at a service root). Entries discovered while
// walking the project are recorded in a Store and evaluated by an Evaluator.
package ignore

import (
	"fmt"
	"path"

	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
)

type Dialect int

const (
	GitStyle Dialect = iota
	DockerStyle
)

const (
	GitIgnoreFilename    = ".gitignore"
	DockerIgnoreFilename = ".dockerignore"
)

func (d Dialect) String() string {
	switch d {
	case GitStyle:
		return "gitignore"
	case DockerStyle:
		return "dockerignore"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// Filename is the basename that identifies an ignore file of this dialect.
func (d Dialect) Filename() string {
	if d == DockerStyle {
		return DockerIgnoreFilename
	}
	return GitIgnoreFilename
}

// Classification describes an ignore file found during discovery.
type Classification struct {
	Dialect Dialect
	// AtRoot is true when the file sits directly in the project root.
	AtRoot bool
}

// Classify inspects a path relative to the project root and reports whether it
// names an ignore file. Every match is reported regardless of depth; whether a
// DockerStyle file is applied is decided later, by mode.
func Classify(relativePath string) (Classification, bool) {
	rel := ctxpath.Normalize(relativePath)
	atRoot := path.Dir(rel) == "."

	switch path.Base(rel) {
	case GitIgnoreFilename:
		return Classification{Dialect: GitStyle, AtRoot: atRoot}, true
	case DockerIgnoreFilename:
		return Classification{Dialect: DockerStyle, AtRoot: atRoot}, true
	}
	return Classification{}, false
}
