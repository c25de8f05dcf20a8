package ignore

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/moby/patternmatcher/ignorefile"
)

var commentLine = regexp.MustCompile(`^\s*#`)

// ReadIgnoreFile returns the pattern lines of an ignore file. Empty lines and
// comments are dropped here so the Store only ever sees patterns.
func ReadIgnoreFile(file string, dialect Dialect) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || commentLine.MatchString(line) {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if dialect == DockerStyle && len(patterns) > 0 {
		// Cleans each pattern and strips a leading "/" the way docker does
		return ignorefile.ReadAll(strings.NewReader(strings.Join(patterns, "\n")))
	}
	return patterns, nil
}
