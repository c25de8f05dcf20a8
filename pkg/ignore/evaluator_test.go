package ignore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var metadataDirs = []string{".balena", ".resin"}

func newEvaluator(t *testing.T, store *Store, serviceRoot string, mode Mode) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(store, Scope{
		ProjectRoot:  "/project",
		ServiceRoot:  serviceRoot,
		Mode:         mode,
		MetadataDirs: metadataDirs,
	})
	require.NoError(t, err)
	return ev
}

func TestNestedGitignorePrecedence(t *testing.T) {
	store := NewStore()
	store.Record("*.log", "/project", GitStyle)
	store.Record("!keep.log", "/project/sub", GitStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.True(t, ev.IsIncluded("/project/sub/keep.log"))
	require.False(t, ev.IsIncluded("/project/sub/other.log"))
	require.False(t, ev.IsIncluded("/project/keep.log"))
	require.True(t, ev.IsIncluded("/project/sub/main.go"))
}

func TestNestedGitignoreMatchesRelativeToOwnDirectory(t *testing.T) {
	store := NewStore()
	store.Record("/generated", "/project/lib", GitStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.False(t, ev.IsIncluded("/project/lib/generated/a.go"))
	require.True(t, ev.IsIncluded("/project/generated/a.go"))
	require.True(t, ev.IsIncluded("/project/other/lib/generated/a.go"))
}

func TestGitignoreAppliesAtAnyDepth(t *testing.T) {
	store := NewStore()
	store.Record("node_modules", "/project", GitStyle)
	ev := newEvaluator(t, store, "/project/service1", MultiRoot)

	require.False(t, ev.IsIncluded("/project/service1/node_modules/left-pad/index.js"))
	require.True(t, ev.IsIncluded("/project/service1/index.js"))
	require.False(t, ev.IsDirIncluded("/project/service1/node_modules"))
}

func TestMetadataDirectoryIsNeverExcluded(t *testing.T) {
	store := NewStore()
	store.Record("*", "/project", GitStyle)
	store.Record(".balena", "/project", DockerStyle)
	store.Record("**/qemu*", "/project", DockerStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.True(t, ev.IsIncluded("/project/.balena/qemu-execve"))
	require.True(t, ev.IsIncluded("/project/.resin/balena.yml"))
	require.True(t, ev.IsIncluded("/project/myservice/.balena/qemu"))
	require.True(t, ev.IsDirIncluded("/project/.balena"))
	require.False(t, ev.CanSkipDir("/project/.balena"))

	require.False(t, ev.IsIncluded("/project/some.dir.for.balena/qemu"))
	require.False(t, ev.IsIncluded("/project/.balena"), "a file named like the directory is not exempt")
}

func TestDockerignoreModeScoping(t *testing.T) {
	store := NewStore()
	store.Record("*.tmp", "/project/service2", DockerStyle)
	store.Record("secret.txt", "/project", DockerStyle)

	t.Run("multi-root applies service root file to its own service only", func(t *testing.T) {
		service1 := newEvaluator(t, store, "/project/service1", MultiRoot)
		require.True(t, service1.IsIncluded("/project/service1/a.tmp"))
		require.True(t, service1.IsIncluded("/project/service1/secret.txt"))

		service2 := newEvaluator(t, store, "/project/service2", MultiRoot)
		require.False(t, service2.IsIncluded("/project/service2/a.tmp"))
		require.True(t, service2.IsIncluded("/project/service2/secret.txt"))
	})

	t.Run("multi-root applies project root file to a service rooted there", func(t *testing.T) {
		ev := newEvaluator(t, store, "/project", MultiRoot)
		require.False(t, ev.IsIncluded("/project/secret.txt"))
		require.True(t, ev.IsIncluded("/project/service2/b.tmp"))
	})

	t.Run("single-root never applies nested files", func(t *testing.T) {
		for _, root := range []string{"/project", "/project/service2"} {
			ev := newEvaluator(t, store, root, SingleRoot)
			require.True(t, ev.IsIncluded("/project/service2/a.tmp"))
		}
		ev := newEvaluator(t, store, "/project", SingleRoot)
		require.False(t, ev.IsIncluded("/project/secret.txt"))
	})

	t.Run("single-root matches root patterns against project-relative paths", func(t *testing.T) {
		s := NewStore()
		s.Record("service1/test-ignore.txt", "/project", DockerStyle)
		ev := newEvaluator(t, s, "/project/service1", SingleRoot)
		require.False(t, ev.IsIncluded("/project/service1/test-ignore.txt"))
		require.True(t, ev.IsIncluded("/project/service1/file1.sh"))
	})
}

func TestDialectsCombine(t *testing.T) {
	store := NewStore()
	store.Record("*.log", "/project", GitStyle)
	store.Record("build", "/project", DockerStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.False(t, ev.IsIncluded("/project/debug.log"))
	require.False(t, ev.IsIncluded("/project/build/out.bin"))
	require.True(t, ev.IsIncluded("/project/src/build.go"))
}

func TestDockerignoreExceptions(t *testing.T) {
	store := NewStore()
	store.Record("docs", "/project", DockerStyle)
	store.Record("!docs/README.md", "/project", DockerStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.False(t, ev.IsIncluded("/project/docs/guide.md"))
	require.True(t, ev.IsIncluded("/project/docs/README.md"))
	require.False(t, ev.CanSkipDir("/project/docs"))
}

func TestCanSkipDir(t *testing.T) {
	store := NewStore()
	store.Record("node_modules", "/project", GitStyle)
	store.Record("vendor/", "/project", GitStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.True(t, ev.CanSkipDir("/project/node_modules"))
	require.True(t, ev.CanSkipDir("/project/vendor"))
	require.False(t, ev.CanSkipDir("/project/src"))

	store.Record("!vendor/keep.go", "/project", GitStyle)
	ev = newEvaluator(t, store, "/project", SingleRoot)
	require.False(t, ev.CanSkipDir("/project/vendor"))
}

func TestEntriesNeverApplyOutsideTheirOrigin(t *testing.T) {
	store := NewStore()
	store.Record("*", "/project/sub", GitStyle)
	ev := newEvaluator(t, store, "/project", SingleRoot)

	require.True(t, ev.IsIncluded("/project/main.go"))
	require.True(t, ev.IsIncluded("/project/subdir/main.go"))
	require.False(t, ev.IsIncluded("/project/sub/main.go"))
}

func TestInvalidDockerPatternIsConfigurationError(t *testing.T) {
	store := NewStore()
	store.Record("!", "/project", DockerStyle)
	_, err := NewEvaluator(store, Scope{ProjectRoot: "/project", ServiceRoot: "/project"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "/project/.dockerignore")
}

func TestApplicableAndHonored(t *testing.T) {
	rootFile := Entry{OriginDir: "/project", Dialect: DockerStyle}
	serviceFile := Entry{OriginDir: "/project/service2", Dialect: DockerStyle}
	gitFile := Entry{OriginDir: "/project/deep/down", Dialect: GitStyle}

	require.True(t, Applicable(rootFile, "/project", "/project/service1", SingleRoot))
	require.False(t, Applicable(serviceFile, "/project", "/project/service2", SingleRoot))
	require.True(t, Applicable(serviceFile, "/project", "/project/service2", MultiRoot))
	require.False(t, Applicable(rootFile, "/project", "/project/service2", MultiRoot))
	require.True(t, Applicable(gitFile, "/project", "/elsewhere", SingleRoot))

	roots := []string{"/project/service1", "/project/service2"}
	require.True(t, Honored("/project", "/project", roots, SingleRoot))
	require.True(t, Honored("/project", "/project", roots, MultiRoot))
	require.False(t, Honored("/project/service2", "/project", roots, SingleRoot))
	require.True(t, Honored("/project/service2", "/project", roots, MultiRoot))
	require.False(t, Honored("/project/service2/src", "/project", roots, MultiRoot))
}
