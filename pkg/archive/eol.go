package archive

import (
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/stevedore-dev/stevedore/pkg/diag"
)

// EOLPolicy selects what happens to text files with CRLF line endings.
type EOLPolicy int

const (
	// EOLKeep emits files unchanged and says nothing.
	EOLKeep EOLPolicy = iota
	// EOLConvert rewrites CRLF to LF in the emitted bytes.
	EOLConvert
	// EOLWarn emits files unchanged and warns about each one.
	EOLWarn
)

func (p EOLPolicy) String() string {
	switch p {
	case EOLConvert:
		return "convert"
	case EOLWarn:
		return "warn"
	}
	return "keep"
}

// PolicyFor maps the build options onto a policy. An explicit opt-out wins
// over conversion.
func PolicyFor(convert, noConvert bool) EOLPolicy {
	switch {
	case noConvert:
		return EOLWarn
	case convert:
		return EOLConvert
	}
	return EOLKeep
}

// NoConvertSummary is reported once per build when files were left with
// CRLF line endings because of --noconvert-eol.
const NoConvertSummary = "Windows-format line endings were detected in some files, but were not converted due to `--noconvert-eol` option."

// sniffLen is how much of a file is inspected to decide whether it is text.
const sniffLen = 8192

var crlf = []byte("\r\n")

// isTextLikely reports whether data looks like text: no NUL byte in the
// sniffed prefix and a detected MIME type under text/.
func isTextLikely(data []byte) bool {
	head := data[:min(len(data), sniffLen)]
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// normalizeEOL applies policy to the contents of the file at abs. It returns
// the bytes to emit, whether CRLF endings were left in place, and the
// diagnostic to report, if any.
func normalizeEOL(policy EOLPolicy, abs string, data []byte) ([]byte, bool, *diag.Diagnostic) {
	if policy == EOLKeep || !bytes.Contains(data, crlf) || !isTextLikely(data) {
		return data, false, nil
	}
	if policy == EOLConvert {
		d := diag.Infof("Converting line endings CRLF -> LF for file: %s", abs)
		return bytes.ReplaceAll(data, crlf, []byte("\n")), false, &d
	}
	d := diag.Warnf("CRLF (Windows) line endings detected in file: %s", abs)
	return data, true, &d
}
