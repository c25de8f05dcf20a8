package plan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/stevedore-dev/stevedore/pkg/console"
	"github.com/stevedore-dev/stevedore/pkg/errors"
	"github.com/stevedore-dev/stevedore/pkg/ignore"
	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
)

// ignoreFile is an ignore file found by the discovery walk.
type ignoreFile struct {
	ignore.Classification
	// path is the absolute path of the file.
	path  string
	depth int
}

func (f ignoreFile) originDir() string {
	return filepath.Dir(f.path)
}

// discover walks the project root, plus any service root outside of it, and
// returns every ignore file ordered by depth, then path. Parents therefore
// always precede the directories they contain.
//
// Like git, the walk does not look for ignore files inside directories that
// the project root's own rules exclude, and unreadable directories below a
// root are skipped.
func discover(ctx context.Context, projectRoot string, serviceRoots []string, opts Options) ([]ignoreFile, error) {
	roots := []string{projectRoot}
	for _, root := range serviceRoots {
		if !ctxpath.Contains(projectRoot, root) {
			roots = append(roots, root)
		}
	}
	prune := rootPruner(projectRoot, serviceRoots, opts)

	seen := map[string]bool{}
	var found []ignoreFile
	for _, root := range roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == root {
					return errors.Configuration("", p, err)
				}
				console.Debug("Skipping %s while looking for ignore files: %s", p, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && (d.Name() == ".git" || prune(p)) {
					return filepath.SkipDir
				}
				return nil
			}
			if seen[p] {
				return nil
			}
			rel, inProject := ctxpath.Rel(projectRoot, p)
			if !inProject {
				rel = filepath.Base(p)
			}
			class, ok := ignore.Classify(rel)
			if !ok {
				return nil
			}
			class.AtRoot = class.AtRoot && inProject
			seen[p] = true
			found = append(found, ignoreFile{
				Classification: class,
				path:           p,
				depth:          ctxpath.Depth(ctxpath.Normalize(p)),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].depth != found[j].depth {
			return found[i].depth < found[j].depth
		}
		return found[i].path < found[j].path
	})
	return found, nil
}

// rootPruner returns a test for directories the walk may leave unvisited:
// excluded by the ignore files at the project root, with nothing below them
// re-included, and containing no service root. The root .dockerignore only
// takes part in single-root mode, where it applies to every service.
func rootPruner(projectRoot string, serviceRoots []string, opts Options) func(dir string) bool {
	never := func(string) bool { return false }

	store := ignore.NewStore()
	read := func(dialect ignore.Dialect) {
		file := filepath.Join(projectRoot, dialect.Filename())
		patterns, err := ignore.ReadIgnoreFile(file, dialect)
		if err != nil {
			// Missing files are normal; unreadable ones are reported by planning.
			return
		}
		store.RecordAll(patterns, projectRoot, dialect)
	}
	if opts.UseGitignore {
		read(ignore.GitStyle)
	}
	if opts.Mode == ignore.SingleRoot {
		read(ignore.DockerStyle)
	}
	if store.Len() == 0 {
		return never
	}

	ev, err := ignore.NewEvaluator(store, ignore.Scope{
		ProjectRoot:  projectRoot,
		ServiceRoot:  projectRoot,
		Mode:         opts.Mode,
		MetadataDirs: opts.MetadataDirs,
	})
	if err != nil {
		return never
	}
	return func(dir string) bool {
		for _, root := range serviceRoots {
			if ctxpath.Contains(dir, root) {
				return false
			}
		}
		return ev.CanSkipDir(dir)
	}
}
