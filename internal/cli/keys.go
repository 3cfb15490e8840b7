package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xabinapal/outlinectl/internal/outline"
	"github.com/xabinapal/outlinectl/internal/utils"
)

// Display widths for the key table, matching the fixed-format view.
const (
	keyIDWidth    = 6
	keyNameWidth  = 20
	keyUsageWidth = 12

	// Values longer than these are truncated with an ellipsis.
	keyNameMax   = 18
	accessURLMax = 40
)

const unnamedPlaceholder = "(unnamed)"

// newListCmd creates the list command.
func (cli *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all access keys",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.output()
			if err != nil {
				return err
			}

			client, err := cli.client()
			if err != nil {
				return err
			}

			keys, err := client.Keys(cmd.Context())
			if err != nil {
				return err
			}

			return output.Write(keys, func() {
				cli.printKeyTable(keys)
			})
		},
	}
}

// printKeyTable renders the fixed-width key table.
func (cli *CLI) printKeyTable(keys []outline.AccessKey) {
	if len(keys) == 0 {
		fmt.Fprintln(cli.stdout, "No access keys found")
		return
	}

	fmt.Fprintf(cli.stdout, "%-*s %-*s %-*s %s\n",
		keyIDWidth, "ID", keyNameWidth, "Name", keyUsageWidth, "Usage (MB)", "Access URL")
	fmt.Fprintln(cli.stdout, strings.Repeat("-", 80))

	for _, key := range keys {
		name := key.Name
		if name == "" {
			name = unnamedPlaceholder
		}
		name = utils.Truncate(name, keyNameMax, "…")
		accessURL := utils.Truncate(key.AccessURL, accessURLMax, "...")

		fmt.Fprintf(cli.stdout, "%-*s %-*s %-*s %s\n",
			keyIDWidth, key.ID, keyNameWidth, name,
			keyUsageWidth, utils.FormatMB(key.UsedBytes), accessURL)
	}
}

// newShowCmd creates the show command.
func (cli *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show full key details",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeyID(args[0])
			if err != nil {
				return err
			}

			output, err := cli.output()
			if err != nil {
				return err
			}

			client, err := cli.client()
			if err != nil {
				return err
			}

			key, err := client.GetKey(cmd.Context(), id)
			if err != nil {
				return err
			}

			return output.Write(key, func() {
				name := key.Name
				if name == "" {
					name = unnamedPlaceholder
				}
				fmt.Fprintf(cli.stdout, "ID:         %s\n", key.ID)
				fmt.Fprintf(cli.stdout, "Name:       %s\n", name)
				fmt.Fprintf(cli.stdout, "Usage:      %s MB\n", utils.FormatMB(key.UsedBytes))
				fmt.Fprintf(cli.stdout, "Access URL: %s\n", key.AccessURL)
				if key.DataLimitBytes > 0 {
					fmt.Fprintf(cli.stdout, "Data Limit: %s MB\n", utils.FormatMB(key.DataLimitBytes))
				}
			})
		},
	}
}

// newAddCmd creates the add command.
func (cli *CLI) newAddCmd() *cobra.Command {
	var nameFlag string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a new access key",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := nameFlag
			if name == "" && len(args) > 0 {
				name = args[0]
			}

			client, err := cli.client()
			if err != nil {
				return err
			}

			key, err := client.CreateKey(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("creating key: %w", err)
			}

			displayName := key.Name
			if displayName == "" {
				displayName = unnamedPlaceholder
			}
			fmt.Fprintf(cli.stdout, "Created key: %s - %s\n", key.ID, displayName)
			fmt.Fprintf(cli.stdout, "Access URL: %s\n", key.AccessURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Name for the new key")

	return cmd
}

// newDeleteCmd creates the delete command.
func (cli *CLI) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an access key",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeyID(args[0])
			if err != nil {
				return err
			}

			client, err := cli.client()
			if err != nil {
				return err
			}

			if err := client.DeleteKey(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cli.stdout, "Deleted key: %d\n", id)
			return nil
		},
	}
}

// newRenameCmd creates the rename command.
func (cli *CLI) newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an access key",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeyID(args[0])
			if err != nil {
				return err
			}
			name := args[1]

			client, err := cli.client()
			if err != nil {
				return err
			}

			if err := client.RenameKey(cmd.Context(), id, name); err != nil {
				return err
			}

			fmt.Fprintf(cli.stdout, "Renamed key %d to: %s\n", id, name)
			return nil
		},
	}
}

// newLimitCmd creates the limit command. A limit of zero removes the limit
// rather than setting a zero-byte ceiling.
func (cli *CLI) newLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limit <id> <mb>",
		Short: "Set a data limit in MB (0 to remove)",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeyID(args[0])
			if err != nil {
				return err
			}
			mb, err := parseLimitMB(args[1])
			if err != nil {
				return err
			}

			client, err := cli.client()
			if err != nil {
				return err
			}

			if mb == 0 {
				if err := client.ClearDataLimit(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cli.stdout, "Removed limit for key %d\n", id)
				return nil
			}

			bytes := int64(mb * utils.BytesPerMB)
			if err := client.SetDataLimit(cmd.Context(), id, bytes); err != nil {
				return err
			}
			fmt.Fprintf(cli.stdout, "Set limit for key %d: %s MB\n", id, utils.FormatMBValue(mb))
			return nil
		},
	}
}
