package build

import (
	"io"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/stevedore-dev/stevedore/pkg/util/files"
)

// Sink receives the archive of one service. Nothing is visible at the
// destination until Commit.
type Sink interface {
	io.Writer
	Commit() error
	Discard()
}

// Output hands out one Sink per service.
type Output interface {
	Open(service string) (Sink, error)
	// Capacity is how many archives the output can hold; 0 means no limit.
	Capacity() int
}

// DirOutput writes <Dir>/<service>.tar, or .tar.gz with Gzip.
type DirOutput struct {
	Dir  string
	Gzip bool
}

func (o *DirOutput) Open(service string) (Sink, error) {
	name := service + ".tar"
	if o.Gzip {
		name += ".gz"
	}
	f, err := files.CreateAtomic(filepath.Join(o.Dir, name))
	if err != nil {
		return nil, err
	}
	if !o.Gzip {
		return f, nil
	}
	return &gzipSink{Writer: gzip.NewWriter(f), target: f}, nil
}

func (o *DirOutput) Capacity() int {
	return 0
}

// WriterOutput streams a single archive to W, typically stdout.
type WriterOutput struct {
	W    io.Writer
	Gzip bool
}

func (o *WriterOutput) Open(service string) (Sink, error) {
	s := &streamSink{Writer: o.W}
	if !o.Gzip {
		return s, nil
	}
	return &gzipSink{Writer: gzip.NewWriter(o.W), target: s}, nil
}

func (o *WriterOutput) Capacity() int {
	return 1
}

// DiscardOutput computes archives without keeping them.
type DiscardOutput struct{}

func (DiscardOutput) Open(service string) (Sink, error) {
	return &streamSink{Writer: io.Discard}, nil
}

func (DiscardOutput) Capacity() int {
	return 0
}

type streamSink struct {
	io.Writer
}

func (s *streamSink) Commit() error { return nil }
func (s *streamSink) Discard()      {}

type gzipSink struct {
	*gzip.Writer
	target Sink
}

func (s *gzipSink) Commit() error {
	if err := s.Writer.Close(); err != nil {
		s.target.Discard()
		return err
	}
	return s.target.Commit()
}

func (s *gzipSink) Discard() {
	s.Writer.Close()
	s.target.Discard()
}
