package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	for _, tt := range []struct {
		path string
		ok   bool
		want Classification
	}{
		{".gitignore", true, Classification{Dialect: GitStyle, AtRoot: true}},
		{"src/lib/.gitignore", true, Classification{Dialect: GitStyle}},
		{".dockerignore", true, Classification{Dialect: DockerStyle, AtRoot: true}},
		{"./.dockerignore", true, Classification{Dialect: DockerStyle, AtRoot: true}},
		{"service2/.dockerignore", true, Classification{Dialect: DockerStyle}},
		{"src/dockerignore", false, Classification{}},
		{"my.gitignore", false, Classification{}},
	} {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Classify(tt.path)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestStoreKeepsOrderPerDialect(t *testing.T) {
	s := NewStore()
	s.Record("*.log", "/p", GitStyle)
	s.Record("*.tmp", "/p/", DockerStyle)
	s.Record("!keep.log", "/p/sub", GitStyle)

	require.Equal(t, 3, s.Len())
	require.Equal(t, []Entry{
		{Pattern: "*.log", OriginDir: "/p", Dialect: GitStyle},
		{Pattern: "!keep.log", OriginDir: "/p/sub", Dialect: GitStyle},
	}, s.Entries(GitStyle))
	require.Equal(t, []Entry{
		{Pattern: "*.tmp", OriginDir: "/p", Dialect: DockerStyle},
	}, s.Entries(DockerStyle))
}

func TestReadIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".gitignore")
	content := "# comment\r\n\r\n   # indented comment\r\nnode_modules\r\n*.log\n\n!keep.log\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	patterns, err := ReadIgnoreFile(file, GitStyle)
	require.NoError(t, err)
	require.Equal(t, []string{"node_modules", "*.log", "!keep.log"}, patterns)
}

func TestReadIgnoreFileDockerNormalizes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".dockerignore")
	require.NoError(t, os.WriteFile(file, []byte("/build/\n  ./tmp/../cache  \n!/keep\n"), 0o644))

	patterns, err := ReadIgnoreFile(file, DockerStyle)
	require.NoError(t, err)
	require.Equal(t, []string{"build", "cache", "!keep"}, patterns)
}

func TestReadIgnoreFileMissing(t *testing.T) {
	_, err := ReadIgnoreFile(filepath.Join(t.TempDir(), ".gitignore"), GitStyle)
	require.ErrorIs(t, err, os.ErrNotExist)
}
