// Package project works out which services a source folder builds: the
// services of a compose file, or a single default service when there is none.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/compose-spec/compose-go/v2/cli"
	"github.com/compose-spec/compose-go/v2/loader"

	"github.com/stevedore-dev/stevedore/pkg/diag"
	"github.com/stevedore-dev/stevedore/pkg/errors"
	"github.com/stevedore-dev/stevedore/pkg/global"
	"github.com/stevedore-dev/stevedore/pkg/util/files"
)

var ComposeFilenames = []string{
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// Service is one buildable service of a project.
type Service struct {
	Name    string
	RootDir string
	// DockerfilePath is empty when the remote builder generates the
	// Dockerfile itself (package.json projects).
	DockerfilePath string
}

type Layout struct {
	ProjectRoot string
	// ComposeFile is empty for a default composition.
	ComposeFile string
	Services    []Service
}

type Options struct {
	// Dockerfile overrides Dockerfile discovery for a project without a
	// compose file. Relative paths are relative to the source folder.
	Dockerfile string
}

// Resolve loads the layout of the project in source.
func Resolve(ctx context.Context, source string, opts Options) (*Layout, []diag.Diagnostic, error) {
	root, err := filepath.Abs(source)
	if err != nil {
		return nil, nil, err
	}
	isDir, err := files.IsDir(root)
	if err != nil {
		return nil, nil, err
	}
	if !isDir {
		return nil, nil, fmt.Errorf("source %q is not a directory", source)
	}

	composeFile, err := findComposeFile(root)
	if err != nil {
		return nil, nil, err
	}
	if composeFile != "" {
		layout, err := loadCompose(ctx, root, composeFile)
		return layout, nil, err
	}

	diags := []diag.Diagnostic{
		diag.Infof("No %q file found at %q", ComposeFilenames[0], root),
		diag.Infof("Creating default composition with source: %q", root),
	}
	dockerfile, err := resolveDefaultDockerfile(root, opts.Dockerfile)
	if err != nil {
		return nil, diags, err
	}
	return &Layout{
		ProjectRoot: root,
		Services: []Service{{
			Name:           global.DefaultServiceName,
			RootDir:        root,
			DockerfilePath: dockerfile,
		}},
	}, diags, nil
}

func findComposeFile(root string) (string, error) {
	for _, name := range ComposeFilenames {
		candidate := filepath.Join(root, name)
		exists, err := files.Exists(candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}
	return "", nil
}

func loadCompose(ctx context.Context, root, composeFile string) (*Layout, error) {
	name := loader.NormalizeProjectName(filepath.Base(root))
	if name == "" {
		name = "project"
	}

	opts, err := cli.NewProjectOptions([]string{composeFile},
		cli.WithWorkingDirectory(root),
		cli.WithOsEnv,
		cli.WithDotEnv,
		cli.WithName(name),
		cli.WithResolvedPaths(true),
	)
	if err != nil {
		return nil, errors.Configuration("", composeFile, err)
	}
	composeProject, err := cli.ProjectFromOptions(ctx, opts)
	if err != nil {
		return nil, errors.Configuration("", composeFile, err)
	}

	layout := &Layout{ProjectRoot: root, ComposeFile: composeFile}
	for serviceName, svc := range composeProject.Services {
		if svc.Build == nil {
			continue
		}
		contextDir := svc.Build.Context
		if contextDir == "" {
			contextDir = root
		}
		if !filepath.IsAbs(contextDir) {
			contextDir = filepath.Join(root, contextDir)
		}

		var dockerfile string
		if svc.Build.DockerfileInline == "" {
			dockerfile, err = resolveServiceDockerfile(contextDir, svc.Build.Dockerfile)
			if err != nil {
				return nil, errors.Configuration(serviceName, contextDir, err)
			}
		}
		layout.Services = append(layout.Services, Service{
			Name:           serviceName,
			RootDir:        filepath.Clean(contextDir),
			DockerfilePath: dockerfile,
		})
	}
	if len(layout.Services) == 0 {
		return nil, errors.ErrorNoServices
	}

	sort.Slice(layout.Services, func(i, j int) bool {
		return layout.Services[i].Name < layout.Services[j].Name
	})
	return layout, nil
}

// Select keeps the named services, in layout order. An empty filter keeps
// every service.
func (l *Layout) Select(names []string) ([]Service, error) {
	if len(names) == 0 {
		return l.Services, nil
	}
	wanted := map[string]bool{}
	for _, name := range names {
		found := false
		for _, svc := range l.Services {
			if svc.Name == name {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.ServiceNotFound(name)
		}
		wanted[name] = true
	}

	var selected []Service
	for _, svc := range l.Services {
		if wanted[svc.Name] {
			selected = append(selected, svc)
		}
	}
	return selected, nil
}

// ServiceRoots lists the root directory of every service.
func ServiceRoots(services []Service) []string {
	roots := make([]string, 0, len(services))
	for _, svc := range services {
		roots = append(roots, svc.RootDir)
	}
	return roots
}

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
