package cmd

import (
	"errors"

	"github.com/3leaps/cloudphoto/internal/config"
	"github.com/3leaps/cloudphoto/pkg/archive"
	"github.com/3leaps/cloudphoto/pkg/provider"
)

// Process exit codes. Every fatal error exits with exitFailure.
const (
	exitSuccess = 0
	exitFailure = 1
)

// cliError carries the user-facing message and exit code of a failed command.
type cliError struct {
	code    int
	message string
	err     error
}

func (e *cliError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &cliError{code: code, message: message, err: err}
}

// fail wraps err with its user-facing message and exitFailure.
func fail(err error) error {
	return exitError(exitFailure, userMessage(err), err)
}

// userMessage returns the short line printed after "Error: ".
func userMessage(err error) string {
	var ce *cliError
	if errors.As(err, &ce) && ce.message != "" {
		return ce.message
	}
	var ae *archive.Error
	if errors.As(err, &ae) {
		switch archive.KindOf(err) {
		case archive.ErrStoreFailed, archive.ErrPublishFailed, archive.ErrDeleteFailed:
			if reason := storeReason(err); reason != "" {
				return ae.Message() + ": " + reason
			}
		}
		return ae.Message()
	}
	switch {
	case errors.Is(err, config.ErrConfigMissing):
		return config.ErrConfigMissing.Error()
	case errors.Is(err, config.ErrConfigIncomplete):
		return config.ErrConfigIncomplete.Error()
	}
	return err.Error()
}

// storeReason names the class of an object store failure, or "" when the
// store gave no recognizable reason.
func storeReason(err error) string {
	switch {
	case provider.IsAccessDenied(err):
		return "access denied"
	case provider.IsInvalidCredentials(err):
		return "invalid credentials"
	case provider.IsBucketNotFound(err):
		return "bucket does not exist"
	case errors.Is(err, provider.ErrBucketAlreadyExists):
		return "bucket name is already taken"
	case provider.IsTransient(err):
		return "storage temporarily unavailable, try again later"
	case provider.IsNotSupported(err):
		return "operation not supported by this storage"
	}
	return ""
}

func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}
