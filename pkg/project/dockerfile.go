package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stevedore-dev/stevedore/pkg/errors"
)

const (
	DockerfileName         = "Dockerfile"
	DockerfileTemplateName = "Dockerfile.template"
	PackageJSONName        = "package.json"
)

// resolveDefaultDockerfile finds the Dockerfile of a project without a
// compose file. An explicit path must exist.
func resolveDefaultDockerfile(root, explicit string) (string, error) {
	if explicit != "" {
		p := explicit
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		if !exists(p) {
			return "", errors.Configuration("", p, os.ErrNotExist)
		}
		return p, nil
	}

	dockerfile, ok, err := findDockerfile(root)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.ProjectNotFound(fmt.Sprintf(
			"no \"Dockerfile[.*]\", \"docker-compose.yml\" or \"package.json\" file\nfound in source folder %q", root))
	}
	return dockerfile, nil
}

// resolveServiceDockerfile resolves the Dockerfile of a compose service. A
// custom name must exist; the default name, which the compose loader may
// fill in on its own, falls back to the other conventional names.
func resolveServiceDockerfile(contextDir, name string) (string, error) {
	if name != "" {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(contextDir, p)
		}
		if exists(p) {
			return p, nil
		}
		if filepath.Base(p) != DockerfileName {
			return "", fmt.Errorf("Dockerfile %q not found", p)
		}
	}

	dockerfile, ok, err := findDockerfile(contextDir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no \"Dockerfile[.*]\" or \"package.json\" file found")
	}
	return dockerfile, nil
}

// findDockerfile looks for, in order: Dockerfile, Dockerfile.template, any
// other Dockerfile.*, package.json. A package.json project resolves to an
// empty path.
func findDockerfile(dir string) (string, bool, error) {
	for _, name := range []string{DockerfileName, DockerfileTemplateName} {
		if p := filepath.Join(dir, name); exists(p) {
			return p, true, nil
		}
	}

	matches, err := doublestar.Glob(os.DirFS(dir), DockerfileName+".*")
	if err != nil {
		return "", false, err
	}
	sort.Strings(matches)
	for _, m := range matches {
		if p := filepath.Join(dir, filepath.FromSlash(m)); exists(p) {
			return p, true, nil
		}
	}

	if exists(filepath.Join(dir, PackageJSONName)) {
		return "", true, nil
	}
	return "", false, nil
}
