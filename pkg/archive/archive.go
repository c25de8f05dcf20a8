// Package archive turns a planned service context into the tar stream sent
// to the image builder.
package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/stevedore-dev/stevedore/pkg/console"
	"github.com/stevedore-dev/stevedore/pkg/diag"
	ctxpath "github.com/stevedore-dev/stevedore/pkg/path"
	"github.com/stevedore-dev/stevedore/pkg/plan"
)

// Entry is one file of a build context. File contents are only read when
// the entry is written.
type Entry struct {
	// Path is slash separated and relative to the service root.
	Path string
	Mode fs.FileMode
	// Size is the size on disk when the entry was collected.
	Size int64
	// Linkname is set for symbolic links, which carry no data.
	Linkname string
	// Source is the absolute path of the file on disk.
	Source string
}

func (e Entry) IsSymlink() bool {
	return e.Mode&fs.ModeSymlink != 0
}

type Result struct {
	Files  int
	Size   int64
	Digest digest.Digest
	// UnconvertedCRLF counts files emitted with Windows line endings.
	UnconvertedCRLF int
}

type Builder struct {
	EOL EOLPolicy
}

// Build collects the context of one service and writes it to w.
func (b *Builder) Build(ctx context.Context, sp *plan.ServicePlan, w io.Writer) (*Result, []diag.Diagnostic, error) {
	entries, diags, err := b.Collect(ctx, sp)
	if err != nil {
		return nil, diags, err
	}
	res, writeDiags, err := b.Write(ctx, w, entries)
	diags = append(diags, writeDiags...)
	if err != nil {
		return nil, diags, fmt.Errorf("writing build context of %s: %w", sp.Context.Name, err)
	}
	return res, diags, nil
}

// Collect walks the service root and returns every included file, sorted by
// path. Excluded files are never opened. Beneath a directory that the rules
// exclude entirely, only metadata directories are still looked for.
func (b *Builder) Collect(ctx context.Context, sp *plan.ServicePlan) ([]Entry, []diag.Diagnostic, error) {
	root := sp.Context.RootDir
	ev := sp.Evaluator

	var entries []Entry
	var diags []diag.Diagnostic
	vanished := func(p string) {
		diags = append(diags, vanishedWarning(p))
	}
	// pruned is the excluded directory currently being searched for
	// metadata directories only.
	pruned := ""

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != root && os.IsNotExist(err) {
				vanished(p)
				return nil
			}
			if p != root && d != nil && d.IsDir() && !ev.IsDirIncluded(p) {
				console.Debug("Skipping unreadable excluded directory %s: %s", p, err)
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if pruned != "" && !ctxpath.Contains(pruned, p) {
			pruned = ""
		}
		if d.IsDir() {
			if pruned == "" && ev.CanSkipDir(p) {
				console.Debug("Searching excluded directory %s for metadata only", p)
				pruned = p
			}
			return nil
		}
		if pruned != "" {
			if !ev.IsMetadataPath(p, false) {
				return nil
			}
		} else if !ev.IsIncluded(p) {
			return nil
		}

		rel, _ := ctxpath.Rel(root, p)
		info, err := d.Info()
		if os.IsNotExist(err) {
			vanished(p)
			return nil
		} else if err != nil {
			return err
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if os.IsNotExist(err) {
				vanished(p)
				return nil
			} else if err != nil {
				return err
			}
			entries = append(entries, Entry{Path: rel, Mode: info.Mode(), Linkname: filepath.ToSlash(target), Source: p})
		case info.Mode().IsRegular():
			entries = append(entries, Entry{Path: rel, Mode: info.Mode(), Size: info.Size(), Source: p})
		default:
			console.Debug("Skipping %s: not a regular file", p)
		}
		return nil
	})
	if err != nil {
		return nil, diags, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, diags, nil
}

func vanishedWarning(p string) diag.Diagnostic {
	return diag.Warnf("File vanished during build, skipping: %s", p)
}

// Write streams entries as a tar archive, reading each file from disk in
// turn. Headers carry no timestamps or ownership so the same files always
// produce the same bytes. A file that disappeared since it was collected is
// reported and left out.
func (b *Builder) Write(ctx context.Context, w io.Writer, entries []Entry) (*Result, []diag.Diagnostic, error) {
	digester := digest.SHA256.Digester()
	cw := &countingWriter{w: io.MultiWriter(w, digester.Hash())}
	tw := tar.NewWriter(cw)

	res := &Result{}
	var diags []diag.Diagnostic
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, diags, err
		}
		hdr := &tar.Header{
			Name:    e.Path,
			Mode:    int64(e.Mode.Perm()),
			ModTime: time.Unix(0, 0),
			Format:  tar.FormatPAX,
		}
		if e.IsSymlink() {
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Linkname
			if err := tw.WriteHeader(hdr); err != nil {
				return nil, diags, fmt.Errorf("%s: writing header: %w", e.Path, err)
			}
			res.Files++
			continue
		}

		note, kept, err := b.writeFile(tw, hdr, e.Source)
		if os.IsNotExist(err) {
			diags = append(diags, vanishedWarning(e.Source))
			continue
		} else if err != nil {
			return nil, diags, fmt.Errorf("%s: %w", e.Path, err)
		}
		if note != nil {
			diags = append(diags, *note)
		}
		res.Files++
		if kept {
			res.UnconvertedCRLF++
		}
	}
	if err := tw.Close(); err != nil {
		return nil, diags, err
	}

	res.Size = cw.n
	res.Digest = digester.Digest()
	return res, diags, nil
}

// writeFile emits one regular file. Text files that may need line-ending
// work are read whole, since the header needs the final size; everything
// else is copied straight from disk.
func (b *Builder) writeFile(tw *tar.Writer, hdr *tar.Header, source string) (*diag.Diagnostic, bool, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, err
	}
	hdr.Typeflag = tar.TypeReg
	hdr.Size = info.Size()

	head := make([]byte, min(info.Size(), sniffLen))
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, false, fmt.Errorf("reading: %w", err)
	}

	if b.EOL != EOLKeep && isTextLikely(head) {
		rest, err := io.ReadAll(io.LimitReader(f, info.Size()-int64(len(head))))
		if err != nil {
			return nil, false, fmt.Errorf("reading: %w", err)
		}
		data, kept, note := normalizeEOL(b.EOL, source, append(head, rest...))
		hdr.Size = int64(len(data))
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, false, fmt.Errorf("writing header: %w", err)
		}
		if _, err := tw.Write(data); err != nil {
			return nil, false, fmt.Errorf("writing: %w", err)
		}
		return note, kept, nil
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return nil, false, fmt.Errorf("writing header: %w", err)
	}
	if _, err := tw.Write(head); err != nil {
		return nil, false, fmt.Errorf("writing: %w", err)
	}
	if _, err := io.CopyN(tw, f, info.Size()-int64(len(head))); err != nil {
		return nil, false, fmt.Errorf("writing: %w", err)
	}
	return nil, false, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
