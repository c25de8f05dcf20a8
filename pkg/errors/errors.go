package errors

import (
	"errors"
	"fmt"
)

const (
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodeProjectNotFound = "PROJECT_NOT_FOUND"
	CodeServiceNotFound = "SERVICE_NOT_FOUND"
)

// Types ////////////////////////////////////////

type CodedError interface {
	Code() string
}

type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string {
	return e.msg
}

func (e *codedError) Code() string {
	return e.code
}

// ConfigurationError aborts context assembly: an ignore file that cannot be
// read or parsed, or a service whose Dockerfile cannot be resolved.
type ConfigurationError struct {
	// Service is empty when the error is not tied to one service.
	Service string
	Path    string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Err.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Service != "" {
		msg = fmt.Sprintf("service %q: %s", e.Service, msg)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Code() string {
	return CodeConfiguration
}

// Error Creators ///////////////////////////////

// The source folder holds neither a Dockerfile, a compose file nor a package.json
func ProjectNotFound(msg string) error {
	return &codedError{
		code: CodeProjectNotFound,
		msg:  msg,
	}
}

// A service filter named a service that the project does not declare
func ServiceNotFound(name string) error {
	return &codedError{
		code: CodeServiceNotFound,
		msg:  fmt.Sprintf("service %q not found in project", name),
	}
}

// Configuration wraps err as a fatal ConfigurationError.
func Configuration(service, path string, err error) error {
	return &ConfigurationError{Service: service, Path: path, Err: err}
}

// Helpers //////////////////////////////////////

func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}

func IsProjectNotFound(err error) bool {
	return Code(err) == CodeProjectNotFound
}

func IsServiceNotFound(err error) bool {
	return Code(err) == CodeServiceNotFound
}

// Return the error code, or the empty string
func Code(err error) string {
	var cerr CodedError
	if errors.As(err, &cerr) {
		return cerr.Code()
	}

	return ""
}
