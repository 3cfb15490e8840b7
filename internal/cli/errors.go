package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// UsageError marks argument-parsing failures so main can exit with
// status 2 instead of the generic failure status 1.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// usageErrorf builds a UsageError from a format string.
func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// IsUsageError reports whether err is an argument-parsing error.
func IsUsageError(err error) bool {
	var uerr *UsageError
	return errors.As(err, &uerr)
}

// exactArgs is cobra.ExactArgs with usage-error wrapping.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s: accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs with usage-error wrapping.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return usageErrorf("%s: accepts at most %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// parseKeyID parses an access key ID argument.
func parseKeyID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usageErrorf("invalid key ID %q: must be an integer", arg)
	}
	return id, nil
}

// parseLimitMB parses a data limit argument in megabytes.
func parseLimitMB(arg string) (float64, error) {
	mb, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, usageErrorf("invalid limit %q: must be a number of megabytes", arg)
	}
	if mb < 0 {
		return 0, usageErrorf("invalid limit %q: must not be negative", arg)
	}
	return mb, nil
}
