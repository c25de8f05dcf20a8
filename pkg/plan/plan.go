// Package plan prepares one build invocation: a ServiceContext per service,
// the ignore rules that apply to it, and the warnings about ignore files
// that will not be honored.
package plan

import (
	"context"
	"path/filepath"

	"github.com/stevedore-dev/stevedore/pkg/diag"
	"github.com/stevedore-dev/stevedore/pkg/errors"
	"github.com/stevedore-dev/stevedore/pkg/global"
	"github.com/stevedore-dev/stevedore/pkg/ignore"
	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
	"github.com/stevedore-dev/stevedore/pkg/project"
)

// ServiceContext describes the build context of one service. It does not
// change for the duration of a build.
type ServiceContext struct {
	Name           string
	RootDir        string
	DockerfilePath string
	IgnoreMode     ignore.Mode
}

// ServicePlan is a ServiceContext together with its own rule store and the
// evaluator compiled from it.
type ServicePlan struct {
	Context   ServiceContext
	Rules     *ignore.Store
	Evaluator *ignore.Evaluator
}

type Plan struct {
	ProjectRoot string
	Mode        ignore.Mode
	Services    []*ServicePlan
	Diagnostics []diag.Diagnostic
}

type Options struct {
	ProjectRoot  string
	Services     []project.Service
	Mode         ignore.Mode
	UseGitignore bool
	// MetadataDirs defaults to global.MetadataDirNames.
	MetadataDirs []string
}

// New plans a build: it walks the project once to discover ignore files,
// reads the ones that some service will apply, and reports the rest.
func New(ctx context.Context, opts Options) (*Plan, error) {
	if len(opts.Services) == 0 {
		return nil, errors.ErrorNoServices
	}
	if opts.MetadataDirs == nil {
		opts.MetadataDirs = global.MetadataDirNames
	}
	projectRoot, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	services := make([]project.Service, len(opts.Services))
	for i, svc := range opts.Services {
		svc.RootDir, err = filepath.Abs(svc.RootDir)
		if err != nil {
			return nil, err
		}
		services[i] = svc
	}
	serviceRoots := project.ServiceRoots(services)

	found, err := discover(ctx, projectRoot, serviceRoots, opts)
	if err != nil {
		return nil, err
	}

	p := &Plan{ProjectRoot: projectRoot, Mode: opts.Mode}
	p.Diagnostics = append(p.Diagnostics, reportUnused(found, projectRoot, serviceRoots, opts.Mode)...)

	cache := map[string][]string{}
	for _, svc := range services {
		sp, err := planService(svc, found, cache, projectRoot, opts)
		if err != nil {
			return nil, err
		}
		p.Services = append(p.Services, sp)
	}
	return p, nil
}

func planService(svc project.Service, found []ignoreFile, cache map[string][]string, projectRoot string, opts Options) (*ServicePlan, error) {
	sc := ServiceContext{
		Name:           svc.Name,
		RootDir:        svc.RootDir,
		DockerfilePath: svc.DockerfilePath,
		IgnoreMode:     opts.Mode,
	}

	store := ignore.NewStore()
	for _, f := range found {
		if !f.appliesTo(sc.RootDir, projectRoot, opts) {
			continue
		}
		patterns, ok := cache[f.path]
		if !ok {
			var err error
			patterns, err = ignore.ReadIgnoreFile(f.path, f.Dialect)
			if err != nil {
				return nil, errors.Configuration(sc.Name, f.path, err)
			}
			cache[f.path] = patterns
		}
		store.RecordAll(patterns, f.originDir(), f.Dialect)
	}

	ev, err := ignore.NewEvaluator(store, ignore.Scope{
		ProjectRoot:  projectRoot,
		ServiceRoot:  sc.RootDir,
		Mode:         opts.Mode,
		MetadataDirs: opts.MetadataDirs,
	})
	if err != nil {
		if cerr, ok := err.(*errors.ConfigurationError); ok {
			cerr.Service = sc.Name
		}
		return nil, err
	}

	return &ServicePlan{Context: sc, Rules: store, Evaluator: ev}, nil
}

// appliesTo reports whether the rules of f can affect any file of the
// service rooted at serviceRoot.
func (f ignoreFile) appliesTo(serviceRoot, projectRoot string, opts Options) bool {
	origin := f.originDir()
	switch f.Dialect {
	case ignore.GitStyle:
		if !opts.UseGitignore {
			return false
		}
		return ctxpath.Contains(origin, serviceRoot) || ctxpath.Contains(serviceRoot, origin)
	default:
		e := ignore.Entry{OriginDir: origin, Dialect: ignore.DockerStyle}
		return ignore.Applicable(e, projectRoot, serviceRoot, opts.Mode)
	}
}
