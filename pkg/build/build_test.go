package build

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/stevedore-dev/stevedore/pkg/archive"
	cerrors "github.com/stevedore-dev/stevedore/pkg/errors"
	"github.com/stevedore-dev/stevedore/pkg/ignore"
)

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Info(msg string, v ...interface{}) {
	r.add("[Info] " + fmt.Sprintf(msg, v...))
}

func (r *recorder) Warn(msg string, v ...interface{}) {
	r.add("[Warn] " + fmt.Sprintf(msg, v...))
}

func (r *recorder) add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func writeFiles(t *testing.T, root string, contents map[string]string) {
	t.Helper()
	for name, content := range contents {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func scenario(t *testing.T) string {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Dockerfile":              "FROM busybox\n",
		"src/start.sh":            "#!/bin/sh\necho start\n",
		"src/crlf.sh":             "#!/bin/sh\r\necho crlf\r\n",
		"src/.dockerignore":       "*.tmp\n",
		".gitignore":              "node_modules\n",
		"node_modules/dep/pkg.js": "module.exports = {}\n",
	})
	return dir
}

func composeProject(t *testing.T) string {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"docker-compose.yml": `services:
  service1:
    build: ./service1
  service2:
    build:
      context: ./service2
      dockerfile: Dockerfile-alt
`,
		".dockerignore":            "service1/test-ignore.txt\n",
		"service1/Dockerfile":      "FROM busybox\n",
		"service1/file1.sh":        "echo 1\n",
		"service1/test-ignore.txt": "ignore me\n",
		"service2/.dockerignore":   "src/ignore.txt\n",
		"service2/Dockerfile-alt":  "FROM busybox\n",
		"service2/file2-crlf.sh":   "echo 2\r\n",
		"service2/src/file1.sh":    "echo 1\n",
		"service2/src/ignore.txt":  "ignore me\n",
	})
	return dir
}

func tarNames(t *testing.T, r io.Reader) []string {
	t.Helper()
	var names []string
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return names
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
}

func tarFile(t *testing.T, p string) []string {
	t.Helper()
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	return tarNames(t, f)
}

func TestRunScenario(t *testing.T) {
	dir := scenario(t)
	out := t.TempDir()
	logger := &recorder{}

	summary, err := Run(context.Background(), Options{
		Source:       dir,
		Mode:         ignore.SingleRoot,
		EOL:          archive.EOLConvert,
		UseGitignore: true,
	}, &DirOutput{Dir: out}, logger)
	require.NoError(t, err)

	require.Len(t, summary.Services, 1)
	main := summary.Services[0]
	require.Equal(t, "main", main.Name)
	require.Equal(t, filepath.Join(dir, "Dockerfile"), main.DockerfilePath)
	require.Equal(t, 5, main.Files)

	require.Equal(t, []string{".gitignore", "Dockerfile", "src/.dockerignore", "src/crlf.sh", "src/start.sh"},
		tarFile(t, filepath.Join(out, "main.tar")))

	require.Len(t, logger.lines, 4)
	require.Equal(t, fmt.Sprintf("[Info] No \"docker-compose.yml\" file found at %q", dir), logger.lines[0])
	require.Equal(t, fmt.Sprintf("[Info] Creating default composition with source: %q", dir), logger.lines[1])
	require.True(t, strings.HasPrefix(logger.lines[2], "[Warn] "))
	require.Contains(t, logger.lines[2], "* "+filepath.Join(dir, "src", ".dockerignore"))
	require.Equal(t, "[Info] Converting line endings CRLF -> LF for file: "+filepath.Join(dir, "src", "crlf.sh"), logger.lines[3])
}

func TestRunComposeMultiRootInParallel(t *testing.T) {
	dir := composeProject(t)
	out := t.TempDir()
	logger := &recorder{}

	summary, err := Run(context.Background(), Options{
		Source:   dir,
		Mode:     ignore.MultiRoot,
		EOL:      archive.EOLConvert,
		Parallel: 2,
	}, &DirOutput{Dir: out}, logger)
	require.NoError(t, err)

	require.Len(t, summary.Services, 2)
	require.Equal(t, "service1", summary.Services[0].Name)
	require.Equal(t, "service2", summary.Services[1].Name)
	require.Equal(t, filepath.Join(dir, "service2", "Dockerfile-alt"), summary.Services[1].DockerfilePath)

	require.Equal(t, []string{"Dockerfile", "file1.sh", "test-ignore.txt"}, tarFile(t, filepath.Join(out, "service1.tar")))
	require.Equal(t, []string{".dockerignore", "Dockerfile-alt", "file2-crlf.sh", "src/file1.sh"}, tarFile(t, filepath.Join(out, "service2.tar")))

	require.Len(t, logger.lines, 2)
	require.True(t, strings.HasPrefix(logger.lines[0], "[Info] ----"))
	require.Equal(t, "[Info] Converting line endings CRLF -> LF for file: "+filepath.Join(dir, "service2", "file2-crlf.sh"), logger.lines[1])
	require.Equal(t, summary.Services[0].Size+summary.Services[1].Size, summary.TotalSize())
}

func TestRunComposeSingleRoot(t *testing.T) {
	dir := composeProject(t)
	out := t.TempDir()

	_, err := Run(context.Background(), Options{Source: dir, Parallel: 4}, &DirOutput{Dir: out}, &recorder{})
	require.NoError(t, err)
	require.Equal(t, []string{"Dockerfile", "file1.sh"}, tarFile(t, filepath.Join(out, "service1.tar")))
	require.Equal(t, []string{".dockerignore", "Dockerfile-alt", "file2-crlf.sh", "src/file1.sh", "src/ignore.txt"},
		tarFile(t, filepath.Join(out, "service2.tar")))
}

func TestRunNoConvertSummary(t *testing.T) {
	dir := composeProject(t)
	logger := &recorder{}

	summary, err := Run(context.Background(), Options{
		Source:   dir,
		Mode:     ignore.MultiRoot,
		EOL:      archive.EOLWarn,
		Services: []string{"service2"},
	}, DiscardOutput{}, logger)
	require.NoError(t, err)
	require.Len(t, summary.Services, 1)
	require.Equal(t, 1, summary.Services[0].UnconvertedCRLF)

	require.Equal(t, []string{
		"[Warn] CRLF (Windows) line endings detected in file: " + filepath.Join(dir, "service2", "file2-crlf.sh"),
		"[Warn] " + archive.NoConvertSummary,
	}, logger.lines[len(logger.lines)-2:])
}

func TestRunGzipToWriter(t *testing.T) {
	dir := scenario(t)
	pr, pw := io.Pipe()
	done := make(chan []string)
	go func() {
		gz, err := gzip.NewReader(pr)
		if err != nil {
			done <- nil
			return
		}
		names := tarNames(t, gz)
		io.Copy(io.Discard, pr)
		done <- names
	}()

	_, err := Run(context.Background(), Options{Source: dir, UseGitignore: true}, &WriterOutput{W: pw, Gzip: true}, &recorder{})
	require.NoError(t, err)
	pw.Close()
	require.Equal(t, []string{".gitignore", "Dockerfile", "src/.dockerignore", "src/crlf.sh", "src/start.sh"}, <-done)
}

func TestRunWriterRejectsMultipleServices(t *testing.T) {
	dir := composeProject(t)
	_, err := Run(context.Background(), Options{Source: dir}, &WriterOutput{W: io.Discard}, &recorder{})
	require.ErrorIs(t, err, cerrors.ErrorStdoutMultiple)
}

func TestRunUnknownService(t *testing.T) {
	dir := composeProject(t)
	_, err := Run(context.Background(), Options{Source: dir, Services: []string{"nope"}}, DiscardOutput{}, &recorder{})
	require.True(t, cerrors.IsConfigurationError(err))
	require.Contains(t, err.Error(), `service "nope" not found`)
}

func TestRunConfigurationErrorWritesNothing(t *testing.T) {
	dir := scenario(t)
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "src", ".gitignore")))
	out := t.TempDir()

	_, err := Run(context.Background(), Options{Source: dir, UseGitignore: true}, &DirOutput{Dir: out}, &recorder{})
	require.True(t, cerrors.IsConfigurationError(err))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunRejectsNegativeParallelism(t *testing.T) {
	_, err := Run(context.Background(), Options{Source: t.TempDir(), Parallel: -1}, DiscardOutput{}, &recorder{})
	require.ErrorIs(t, err, cerrors.ErrorInvalidParallelism)
}

func TestInspect(t *testing.T) {
	dir := scenario(t)
	listings, err := Inspect(context.Background(), Options{Source: dir, UseGitignore: true}, &recorder{})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, "main", listings[0].Service)
	require.Len(t, listings[0].Entries, 5)
	require.Equal(t, 5, listings[0].Files)
	require.NotEmpty(t, listings[0].Digest)
}
