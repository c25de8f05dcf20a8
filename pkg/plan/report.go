package plan

import (
	"github.com/stevedore-dev/stevedore/pkg/diag"
	"github.com/stevedore-dev/stevedore/pkg/ignore"
	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
)

var singleRootExplanation = []string{
	"By default, only one .dockerignore file at the source folder (project root)",
	"is used. Microservices (multicontainer) applications may use a separate",
	".dockerignore file for each service with the --multi-dockerignore (-m) option.",
	`See "stevedore help build" for more details.`,
}

var multiRootExplanation = []string{
	"When --multi-dockerignore (-m) is used, only .dockerignore files at the root of",
	"each service's build context (in a microservices/multicontainer application),",
	"plus a .dockerignore file at the overall project root, are used.",
	`See "stevedore help build" for more details.`,
}

var multiRootProjectFileNote = []string{
	"The --multi-dockerignore option is being used, and a .dockerignore file was",
	"found at the project source (root) directory. Note that this file will not",
	`be used to filter service subdirectories. See "stevedore help build".`,
}

// reportUnused builds the grouped diagnostics about .dockerignore files: one
// warning listing every file that no service will honor, and in multi-root
// mode a note when the project root file cannot filter service directories.
func reportUnused(found []ignoreFile, projectRoot string, serviceRoots []string, mode ignore.Mode) []diag.Diagnostic {
	var skipped []string
	rootFile := false
	for _, f := range found {
		if f.Dialect != ignore.DockerStyle {
			continue
		}
		if f.AtRoot {
			rootFile = true
		}
		if !ignore.Honored(f.originDir(), projectRoot, serviceRoots, mode) {
			skipped = append(skipped, f.path)
		}
	}

	var diags []diag.Diagnostic
	if len(skipped) > 0 {
		lines := []string{"The following .dockerignore file(s) will not be used:"}
		for _, p := range skipped {
			lines = append(lines, "* "+p)
		}
		if mode == ignore.MultiRoot {
			lines = append(lines, multiRootExplanation...)
		} else {
			lines = append(lines, singleRootExplanation...)
		}
		diags = append(diags, diag.Warnf("%s", diag.Banner(lines...)))
	}

	if mode == ignore.MultiRoot && rootFile {
		for _, root := range serviceRoots {
			if ctxpath.Normalize(root) != ctxpath.Normalize(projectRoot) {
				diags = append(diags, diag.Infof("%s", diag.Banner(multiRootProjectFileNote...)))
				break
			}
		}
	}
	return diags
}
