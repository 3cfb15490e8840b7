package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xabinapal/outlinectl/internal/config"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name" yaml:"name"`
	Status  CheckStatus `json:"status" yaml:"status"`
	Message string      `json:"message" yaml:"message"`
	Fix     string      `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status label.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the status as its label.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// MarshalYAML renders the status as its label.
func (s CheckStatus) MarshalYAML() (any, error) {
	return s.String(), nil
}

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and server connectivity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.output()
			if err != nil {
				return err
			}

			results := cli.runChecks(cmd.Context())

			problems := 0
			for _, r := range results {
				if r.Status == CheckError {
					problems++
				}
			}

			if err := output.Write(results, func() {
				for _, r := range results {
					fmt.Fprintf(cli.stdout, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
					if r.Fix != "" {
						fmt.Fprintf(cli.stdout, "       fix: %s\n", r.Fix)
					}
				}
			}); err != nil {
				return err
			}

			if problems > 0 {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			return nil
		},
	}
}

// runChecks performs all diagnostic checks. Doctor loads the store itself
// so it can report a broken config instead of failing on it.
func (cli *CLI) runChecks(ctx context.Context) []CheckResult {
	var results []CheckResult

	paths := config.GetPaths()

	// Config file
	store, err := config.Load()
	switch {
	case err != nil:
		results = append(results, CheckResult{
			Name:    "config",
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fmt.Sprintf("inspect or remove %s", paths.ConfigFile),
		})
		return results
	case len(store.Names()) == 0:
		if _, statErr := os.Stat(paths.ConfigFile); statErr != nil {
			results = append(results, CheckResult{
				Name:    "config",
				Status:  CheckWarning,
				Message: "no config file yet",
				Fix:     "run 'outlinectl profile add <name>'",
			})
		} else {
			results = append(results, CheckResult{
				Name:    "config",
				Status:  CheckWarning,
				Message: "config file has no profiles",
				Fix:     "run 'outlinectl profile add <name>'",
			})
		}
		return results
	default:
		results = append(results, CheckResult{
			Name:    "config",
			Status:  CheckOK,
			Message: fmt.Sprintf("%d profile(s) in %s", len(store.Names()), paths.ConfigFile),
		})
	}

	// Requested profile
	prof, err := store.Get(cli.profileFlag)
	if err != nil {
		results = append(results, CheckResult{
			Name:    "profile",
			Status:  CheckError,
			Message: fmt.Sprintf("profile %q not found", cli.profileFlag),
			Fix:     fmt.Sprintf("available profiles: %s", strings.Join(store.Names(), ", ")),
		})
		return results
	}
	results = append(results, CheckResult{
		Name:    "profile",
		Status:  CheckOK,
		Message: fmt.Sprintf("%q resolves to %s", prof.Name, prof.APIURL),
	})

	// Server reachability
	client, err := cli.newClient(prof.APIURL, prof.CertSHA256)
	if err != nil {
		results = append(results, CheckResult{
			Name:    "server",
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fmt.Sprintf("check the cert_sha256 value in profile %q", prof.Name),
		})
		return results
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	info, err := client.Server(probeCtx)
	if err != nil {
		results = append(results, CheckResult{
			Name:    "server",
			Status:  CheckError,
			Message: fmt.Sprintf("connection failed: %v", err),
			Fix:     "check that the server is up and the API URL is current",
		})
		return results
	}

	results = append(results, CheckResult{
		Name:    "server",
		Status:  CheckOK,
		Message: fmt.Sprintf("reachable, version %s", info.Version),
	})

	return results
}
