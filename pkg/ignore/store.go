package ignore

import (
	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
)

// Entry is one pattern line of an ignore file, tagged with the directory the
// file lives in.
type Entry struct {
	Pattern   string
	OriginDir string
	Dialect   Dialect
}

// Store holds the entries of every ignore file recorded for one service, one
// ordered list per dialect. It is filled during discovery and only read after.
type Store struct {
	git    []Entry
	docker []Entry
}

func NewStore() *Store {
	return &Store{}
}

// Record appends an entry. Blank and comment lines must already be filtered
// out by the caller.
func (s *Store) Record(pattern, originDir string, dialect Dialect) {
	e := Entry{Pattern: pattern, OriginDir: ctxpath.Normalize(originDir), Dialect: dialect}
	switch dialect {
	case DockerStyle:
		s.docker = append(s.docker, e)
	default:
		s.git = append(s.git, e)
	}
}

// RecordAll records every line of one ignore file, in order.
func (s *Store) RecordAll(patterns []string, originDir string, dialect Dialect) {
	for _, p := range patterns {
		s.Record(p, originDir, dialect)
	}
}

// Entries returns the recorded entries of a dialect in insertion order.
func (s *Store) Entries(dialect Dialect) []Entry {
	if dialect == DockerStyle {
		return append([]Entry(nil), s.docker...)
	}
	return append([]Entry(nil), s.git...)
}

func (s *Store) Len() int {
	return len(s.git) + len(s.docker)
}
