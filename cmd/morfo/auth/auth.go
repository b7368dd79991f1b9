// Package authcmder provides the auth command for storing the API key.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/morfolab/morfo/pkg/cliui"
	"github.com/morfolab/morfo/pkg/credentials"
)

const authLongDesc string = `Store the API key morfo uses to reach the streaming endpoint.

The key is stored in credentials.toml in the .morfo/ directory with
owner-only permissions. A stored key takes precedence over the
environment; without one, morfo falls back to the first of
MORFO_API_KEY or OPENAI_API_KEY that is set.

Examples:
  morfo auth                Prompt for the API key
  morfo auth --show         Show where the key comes from
  morfo auth --remove       Remove the stored key
  echo $KEY | morfo auth    Pipe the API key from stdin`

const authShortDesc string = "Store the API key"

func NewAuthCmd() *cobra.Command {
	var showFlag bool
	var removeFlag bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			switch {
			case showFlag:
				return runShow(configDir)
			case removeFlag:
				return runRemove(configDir)
			default:
				return runAuth(configDir)
			}
		},
	}

	cmd.Flags().BoolVar(&showFlag, "show", false, "Show where the API key comes from")
	cmd.Flags().BoolVar(&removeFlag, "remove", false, "Remove the stored API key")

	return cmd
}

func runAuth(configDir string) error {
	apiKey, err := readAPIKey()
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(apiKey); err != nil {
		return err
	}

	fmt.Printf("\n  %s Stored API key %s\n\n",
		cliui.SuccessMark,
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)

	return nil
}

func runShow(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	creds, err := mgr.Load()
	if err != nil {
		return err
	}

	fmt.Println()
	if creds != nil && creds.APIKey != "" {
		fmt.Printf("  %s Stored key %s %s\n\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(mask(creds.APIKey)),
			cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
		)
		return nil
	}

	for _, envVar := range credentials.EnvVars() {
		if os.Getenv(envVar) != "" {
			fmt.Printf("  %s No stored key; using %s from the environment.\n\n",
				cliui.DimStyle.Render("●"),
				cliui.NameStyle.Render(envVar),
			)
			return nil
		}
	}

	fmt.Printf("  %s No API key found.\n", cliui.DimStyle.Render("●"))
	fmt.Printf("  Use 'morfo auth' to store one, or set %s.\n\n",
		strings.Join(credentials.EnvVars(), " or "))

	return nil
}

func runRemove(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed the stored API key.\n\n", cliui.SuccessMark)

	return nil
}

// mask shows just enough of a key to recognize it.
func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// readAPIKey reads an API key from stdin. If stdin is a pipe, it reads the
// first line. Otherwise, it prompts interactively with hidden input.
func readAPIKey() (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	fmt.Print("  API key (input hidden): ")
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	return string(keyBytes), nil
}
