// Package build runs one build invocation: it resolves the project layout,
// plans every service context and writes one archive per service.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/stevedore-dev/stevedore/pkg/archive"
	"github.com/stevedore-dev/stevedore/pkg/console"
	"github.com/stevedore-dev/stevedore/pkg/diag"
	cerrors "github.com/stevedore-dev/stevedore/pkg/errors"
	"github.com/stevedore-dev/stevedore/pkg/ignore"
	"github.com/stevedore-dev/stevedore/pkg/plan"
	"github.com/stevedore-dev/stevedore/pkg/project"
)

type Options struct {
	Source     string
	Dockerfile string
	// Services filters the services to build; empty builds all of them.
	Services     []string
	Mode         ignore.Mode
	EOL          archive.EOLPolicy
	UseGitignore bool
	// Parallel is the number of services archived at once.
	Parallel int
}

type ServiceResult struct {
	Name           string
	RootDir        string
	DockerfilePath string
	*archive.Result
}

type Summary struct {
	Services    []ServiceResult
	Diagnostics []diag.Diagnostic
}

// TotalSize is the sum of the uncompressed archive sizes.
func (s *Summary) TotalSize() int64 {
	var total int64
	for _, svc := range s.Services {
		total += svc.Size
	}
	return total
}

// Prepare resolves the project in opts.Source and plans the selected
// services. Diagnostics go to report, including the ones gathered before a
// failure.
func Prepare(ctx context.Context, opts Options, report *diag.Report) (*plan.Plan, error) {
	layout, diags, err := project.Resolve(ctx, opts.Source, project.Options{Dockerfile: opts.Dockerfile})
	report.Add(diags...)
	if err != nil {
		return nil, err
	}
	services, err := layout.Select(opts.Services)
	if err != nil {
		return nil, cerrors.Configuration("", layout.ComposeFile, err)
	}
	console.Debug("Planning %d service(s) in %s (%s)", len(services), layout.ProjectRoot, opts.Mode)

	p, err := plan.New(ctx, plan.Options{
		ProjectRoot:  layout.ProjectRoot,
		Services:     services,
		Mode:         opts.Mode,
		UseGitignore: opts.UseGitignore,
	})
	if err != nil {
		return nil, err
	}
	report.Add(p.Diagnostics...)
	return p, nil
}

// Run builds every planned service into out. Diagnostics are flushed to
// logger in service order as services complete. A planning error aborts
// before any archive is written; an archive error of one service does not
// stop the others, and all of them are returned together.
func Run(ctx context.Context, opts Options, out Output, logger diag.Logger) (*Summary, error) {
	parallel := opts.Parallel
	if parallel == 0 {
		parallel = 1
	}
	if parallel < 0 {
		return nil, cerrors.ErrorInvalidParallelism
	}

	report := diag.NewReport()
	p, err := Prepare(ctx, opts, report)
	report.Flush(logger)
	if err != nil {
		return nil, err
	}
	if c := out.Capacity(); c > 0 && len(p.Services) > c {
		return nil, cerrors.ErrorStdoutMultiple
	}

	type outcome struct {
		result *archive.Result
		diags  []diag.Diagnostic
		err    error
		done   chan struct{}
	}
	outcomes := make([]*outcome, len(p.Services))
	for i := range outcomes {
		outcomes[i] = &outcome{done: make(chan struct{})}
	}

	builder := &archive.Builder{EOL: opts.EOL}
	g := new(errgroup.Group)
	g.SetLimit(parallel)
	go func() {
		for i, sp := range p.Services {
			sp := sp // per-iteration copy (go 1.21 loop semantics)
			o := outcomes[i]
			g.Go(func() error {
				defer close(o.done)
				o.result, o.diags, o.err = buildService(ctx, builder, sp, out)
				return nil
			})
		}
	}()

	summary := &Summary{}
	var errs []error
	crlf := 0
	for i, o := range outcomes {
		<-o.done
		sp := p.Services[i]
		report.Add(o.diags...)
		report.Flush(logger)
		if o.err != nil {
			errs = append(errs, fmt.Errorf("service %s: %w", sp.Context.Name, o.err))
			continue
		}
		console.Debug("Service %s: %d files, %s", sp.Context.Name, o.result.Files, o.result.Digest)
		crlf += o.result.UnconvertedCRLF
		summary.Services = append(summary.Services, ServiceResult{
			Name:           sp.Context.Name,
			RootDir:        sp.Context.RootDir,
			DockerfilePath: sp.Context.DockerfilePath,
			Result:         o.result,
		})
	}
	// Failures are carried by each outcome; the closures never return one.
	_ = g.Wait()

	if crlf > 0 {
		report.Add(diag.Warnf("%s", archive.NoConvertSummary))
		report.Flush(logger)
	}
	summary.Diagnostics = report.Items()
	return summary, errors.Join(errs...)
}

func buildService(ctx context.Context, b *archive.Builder, sp *plan.ServicePlan, out Output) (*archive.Result, []diag.Diagnostic, error) {
	sink, err := out.Open(sp.Context.Name)
	if err != nil {
		return nil, nil, err
	}
	res, diags, err := b.Build(ctx, sp, sink)
	if err != nil {
		sink.Discard()
		return nil, diags, err
	}
	if err := sink.Commit(); err != nil {
		return nil, diags, err
	}
	return res, diags, nil
}

// Listing is the content of one service context, as `ls` shows it.
type Listing struct {
	Service string
	RootDir string
	Entries []archive.Entry
	*archive.Result
}

// Inspect plans the project like Run and collects each service context
// without writing any archive.
func Inspect(ctx context.Context, opts Options, logger diag.Logger) ([]Listing, error) {
	report := diag.NewReport()
	p, err := Prepare(ctx, opts, report)
	report.Flush(logger)
	if err != nil {
		return nil, err
	}

	builder := &archive.Builder{EOL: opts.EOL}
	var listings []Listing
	for _, sp := range p.Services {
		entries, diags, err := builder.Collect(ctx, sp)
		report.Add(diags...)
		if err != nil {
			report.Flush(logger)
			return nil, fmt.Errorf("service %s: %w", sp.Context.Name, err)
		}
		res, diags, err := builder.Write(ctx, io.Discard, entries)
		report.Add(diags...)
		report.Flush(logger)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", sp.Context.Name, err)
		}
		listings = append(listings, Listing{
			Service: sp.Context.Name,
			RootDir: sp.Context.RootDir,
			Entries: entries,
			Result:  res,
		})
	}
	return listings, nil
}
