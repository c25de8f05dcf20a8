package errors

import (
	"errors"
)

var (
	ErrorNoServices         = errors.New("The project does not declare any service with a build section")
	ErrorStdoutMultiple     = errors.New("Cannot write more than one build context to stdout, use --output <dir>")
	ErrorInvalidParallelism = errors.New("--parallel must be at least 1")
)
