// Package cli provides the command-line interface for outlinectl.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xabinapal/outlinectl/internal/config"
	"github.com/xabinapal/outlinectl/internal/outline"
)

// keyClient is the subset of the Outline management client the commands
// use. It exists so tests can substitute a fake server handle.
type keyClient interface {
	Keys(ctx context.Context) ([]outline.AccessKey, error)
	GetKey(ctx context.Context, id int) (*outline.AccessKey, error)
	CreateKey(ctx context.Context, name string) (*outline.AccessKey, error)
	DeleteKey(ctx context.Context, id int) error
	RenameKey(ctx context.Context, id int, name string) error
	SetDataLimit(ctx context.Context, id int, bytes int64) error
	ClearDataLimit(ctx context.Context, id int) error
	Server(ctx context.Context) (*outline.ServerInfo, error)
}

// CLI holds the application state for the CLI.
type CLI struct {
	Store   *config.Store
	rootCmd *cobra.Command

	stdin       io.Reader
	stdinReader *bufio.Reader
	stdout      io.Writer

	newClient func(apiURL, certSHA256 string) (keyClient, error)

	// Flags
	profileFlag string
	outputFlag  string
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		newClient: func(apiURL, certSHA256 string) (keyClient, error) {
			return outline.NewClient(apiURL, certSHA256)
		},
	}

	cli.rootCmd = &cobra.Command{
		Use:   "outlinectl [command]",
		Short: "outlinectl - Outline VPN access key manager",
		Long: `outlinectl administers access keys on an Outline VPN server through its
management API: create, list, rename and delete keys, and set per-key
data limits.

Connection credentials (API URL and certificate fingerprint) are kept in
named profiles, so several servers can be managed from one machine.

Examples:
  outlinectl list
  outlinectl add --name laptop
  outlinectl show 1
  outlinectl rename 1 "Work iPhone"
  outlinectl limit 1 1024
  outlinectl limit 1 0
  outlinectl profile add home
  outlinectl --profile home list`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return usageErrorf("unknown command %q", args[0])
		},
	}

	// Global flags
	cli.rootCmd.PersistentFlags().StringVarP(&cli.profileFlag, "profile", "p", "default", "Profile to use")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.outputFlag, "output", "o", "text", "Output format (text, json, yaml)")

	// Flag parsing failures are usage errors, exit status 2.
	cli.rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newListCmd(),
		cli.newShowCmd(),
		cli.newAddCmd(),
		cli.newDeleteCmd(),
		cli.newRenameCmd(),
		cli.newLimitCmd(),
		cli.newProfileCmd(),
		cli.newDoctorCmd(),
		cli.newVersionCmd(),
		cli.newCompletionCmd(),
	)
}

// initialize runs the legacy migration and loads the profile store.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	// Commands that must work even with a broken store.
	switch cmd.Name() {
	case "version", "completion", "doctor", "help":
		return nil
	}

	migrated, from, err := config.MigrateLegacy()
	if err != nil {
		return err
	}
	if migrated {
		fmt.Fprintf(cli.stdout, "Migrated credentials from %s to 'default' profile\n", from)
		fmt.Fprintf(cli.stdout, "Config now stored in: %s\n\n", config.GetPaths().ConfigFile)
	}

	store, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cli.Store = store

	return nil
}

// Execute runs the CLI.
func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// client resolves the requested profile into a configured API client.
// When no profiles exist at all, the interactive first-time setup runs and
// its result is used; when the requested profile is missing but others
// exist, the available names are reported instead of guessing.
func (cli *CLI) client() (keyClient, error) {
	prof, err := cli.Store.Get(cli.profileFlag)
	if err != nil {
		names := cli.Store.Names()
		if len(names) > 0 {
			return nil, fmt.Errorf("profile %q not found (available profiles: %s)",
				cli.profileFlag, strings.Join(names, ", "))
		}

		fmt.Fprintln(cli.stdout, "No profiles configured.")
		prof, err = cli.runSetup(cli.profileFlag)
		if err != nil {
			return nil, err
		}
	}

	return cli.newClient(prof.APIURL, prof.CertSHA256)
}

// output returns an OutputWriter for the requested format.
func (cli *CLI) output() (*OutputWriter, error) {
	format, err := ParseOutputFormat(cli.outputFlag)
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	return NewOutputWriter(cli.stdout, format), nil
}

// getProfileNames returns all profile names for shell completion.
func (cli *CLI) getProfileNames() []string {
	if cli.Store == nil {
		return nil
	}
	return cli.Store.Names()
}
