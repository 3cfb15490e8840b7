package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xabinapal/outlinectl/internal/config"
)

// runSetup interactively prompts for server credentials and saves them
// under the given profile name.
func (cli *CLI) runSetup(name string) (*config.Profile, error) {
	fmt.Fprintf(cli.stdout, "Setup profile %q: enter your Outline server credentials\n\n", name)

	apiURL, err := cli.prompt("API URL (e.g. https://x.x.x.x:port/prefix): ")
	if err != nil {
		return nil, err
	}
	certSHA256, err := cli.prompt("Certificate SHA256: ")
	if err != nil {
		return nil, err
	}

	if apiURL == "" || certSHA256 == "" {
		return nil, errors.New("both API URL and certificate SHA256 are required")
	}

	cli.Store.Set(name, apiURL, certSHA256)
	if err := cli.Store.Save(); err != nil {
		return nil, err
	}
	fmt.Fprintf(cli.stdout, "Profile %q saved to %s\n", name, cli.Store.FilePath())

	return cli.Store.Get(name)
}

// prompt prints a prompt and reads one trimmed line from stdin.
func (cli *CLI) prompt(label string) (string, error) {
	fmt.Fprint(cli.stdout, label)

	if cli.stdinReader == nil {
		cli.stdinReader = bufio.NewReader(cli.stdin)
	}
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm prompts for a yes/no answer; only "y" or "yes" confirms.
func (cli *CLI) confirm(label string) (bool, error) {
	answer, err := cli.prompt(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
