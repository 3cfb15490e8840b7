package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xabinapal/outlinectl/internal/utils"
)

// Display widths for the profile table.
const (
	profileNameWidth = 20
	profileURLMax    = 38
)

// newProfileCmd creates the profile command group.
func (cli *CLI) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage Outline server profiles",
		Long: `Manage connection profiles for different Outline servers.

A profile stores the management API URL and the certificate SHA-256
fingerprint for one server.

Examples:
  # List all profiles
  outlinectl profile list

  # Add a new profile interactively
  outlinectl profile add home

  # Add a new profile without prompts
  outlinectl profile add home --api-url=https://1.2.3.4:5678/AbCdEf --cert-sha256=0123...

  # Use a profile for a key command
  outlinectl --profile home list`,
	}

	cmd.AddCommand(
		cli.newProfileListCmd(),
		cli.newProfileAddCmd(),
		cli.newProfileRemoveCmd(),
		cli.newProfileShowCmd(),
	)

	return cmd
}

// newProfileListCmd creates the profile list command.
func (cli *CLI) newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all configured profiles",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.output()
			if err != nil {
				return err
			}

			profiles := cli.Store.Profiles()

			// The cert fingerprint stays out of the listing.
			type profileView struct {
				Name   string `json:"name" yaml:"name"`
				APIURL string `json:"api_url" yaml:"api_url"`
			}
			views := make([]profileView, 0, len(profiles))
			for _, p := range profiles {
				views = append(views, profileView{Name: p.Name, APIURL: p.APIURL})
			}

			return output.Write(views, func() {
				if len(profiles) == 0 {
					fmt.Fprintln(cli.stdout, "No profiles configured.")
					fmt.Fprintln(cli.stdout, "Run: outlinectl profile add <name>")
					return
				}

				fmt.Fprintf(cli.stdout, "%-*s %s\n", profileNameWidth, "Profile", "API URL")
				fmt.Fprintln(cli.stdout, "------------------------------------------------------------")
				for _, p := range profiles {
					fmt.Fprintf(cli.stdout, "%-*s %s\n", profileNameWidth, p.Name,
						utils.Truncate(p.APIURL, profileURLMax, "..."))
				}
			})
		},
	}
}

// newProfileAddCmd creates the profile add command.
func (cli *CLI) newProfileAddCmd() *cobra.Command {
	var (
		apiURL     string
		certSHA256 string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new profile",
		Long: `Add a new Outline server profile.

Credentials can be passed with --api-url and --cert-sha256; when either
is missing, an interactive prompt asks for them.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !utils.IsValidProfileName(name) {
				return usageErrorf("invalid profile name %q", name)
			}

			if cli.Store.Has(name) {
				return fmt.Errorf("profile %q already exists; use 'profile show %s' to view it", name, name)
			}

			if apiURL != "" && certSHA256 != "" {
				cli.Store.Set(name, apiURL, certSHA256)
				if err := cli.Store.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cli.stdout, "Profile %q saved to %s\n", name, cli.Store.FilePath())
				return nil
			}

			_, err := cli.runSetup(name)
			return err
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Management API URL")
	cmd.Flags().StringVar(&certSHA256, "cert-sha256", "", "Certificate SHA-256 fingerprint")

	return cmd
}

// newProfileRemoveCmd creates the profile remove command.
func (cli *CLI) newProfileRemoveCmd() *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a profile",
		Args:    exactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return cli.getProfileNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !cli.Store.Has(name) {
				return fmt.Errorf("profile %q not found", name)
			}

			if !forceFlag {
				ok, err := cli.confirm(fmt.Sprintf("Delete profile %q? [y/N]: ", name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cli.stdout, "Cancelled")
					return nil
				}
			}

			if err := cli.Store.Remove(name); err != nil {
				return err
			}
			if err := cli.Store.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Fprintf(cli.stdout, "Removed profile: %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Remove without confirmation")

	return cmd
}

// newProfileShowCmd creates the profile show command.
func (cli *CLI) newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show profile details",
		Args:  exactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return cli.getProfileNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.output()
			if err != nil {
				return err
			}

			prof, err := cli.Store.Get(args[0])
			if err != nil {
				return err
			}

			// Most of the fingerprint is masked in every format.
			type profileView struct {
				Name       string `json:"name" yaml:"name"`
				APIURL     string `json:"api_url" yaml:"api_url"`
				CertSHA256 string `json:"cert_sha256" yaml:"cert_sha256"`
			}
			view := profileView{
				Name:       prof.Name,
				APIURL:     prof.APIURL,
				CertSHA256: utils.MaskFingerprint(prof.CertSHA256),
			}

			return output.Write(view, func() {
				fmt.Fprintf(cli.stdout, "Profile:     %s\n", view.Name)
				fmt.Fprintf(cli.stdout, "API URL:     %s\n", view.APIURL)
				fmt.Fprintf(cli.stdout, "Cert SHA256: %s\n", view.CertSHA256)
			})
		},
	}
}
