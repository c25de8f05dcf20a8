package config

import (
	"os"
	"runtime"
	"strconv"
)

// ParallelEnvVar sets the default number of services archived at once.
const ParallelEnvVar = "STEVEDORE_PARALLEL"

// LogLevelEnvVar sets the console level when --verbose is not given.
const LogLevelEnvVar = "STEVEDORE_LOG_LEVEL"

// DefaultParallel reads STEVEDORE_PARALLEL, falling back to the number of
// CPUs. Invalid values are ignored.
func DefaultParallel() int {
	if v := os.Getenv(ParallelEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}
