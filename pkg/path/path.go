// Package path holds the POSIX path arithmetic that every ignore-scoping
// decision reduces to. Nothing here touches the filesystem.
package path

import (
	go_path "path"
	"path/filepath"
	"strings"
)

// Normalize converts p to forward slashes and resolves "." and ".." segments.
func Normalize(p string) string {
	return go_path.Clean(filepath.ToSlash(p))
}

// Rel returns the POSIX path of target relative to base, and whether target
// lies under base at all. The second result is false when target escapes
// base, or when one path is absolute and the other is not.
func Rel(base, target string) (string, bool) {
	base = Normalize(base)
	target = Normalize(target)

	if base == target {
		return ".", true
	}
	if isAbs(base) != isAbs(target) {
		return "", false
	}
	if base == "." {
		if target == ".." || strings.HasPrefix(target, "../") {
			return "", false
		}
		return target, true
	}

	prefix := base
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(target, prefix) {
		return "", false
	}
	return target[len(prefix):], true
}

// Contains reports whether dir contains p. A directory contains itself.
func Contains(dir, p string) bool {
	_, ok := Rel(dir, p)
	return ok
}

// Depth is the number of segments in a normalized relative path; "." is 0.
func Depth(rel string) int {
	rel = Normalize(rel)
	if rel == "." || rel == "/" {
		return 0
	}
	return strings.Count(strings.Trim(rel, "/"), "/") + 1
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || filepath.IsAbs(filepath.FromSlash(p))
}
