package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/validation"
)

var (
	initGroqKey     string
	initNotionToken string
	initNotionDB    string
	initName        string
	initEmail       string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local vault",
	Long: `Initialize the local Mapping vault.

You will be prompted to create a password that gates unlocking. API keys for
the structuring and storage integrations can be stored now or later via the
daemon API.

Examples:
  mapctl init
  mapctl init --groq-key gsk_... --notion-token secret_... --notion-db 1234abcd`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initGroqKey, "groq-key", "", "Groq API key to store encrypted")
	initCmd.Flags().StringVar(&initNotionToken, "notion-token", "", "Notion integration token to store encrypted")
	initCmd.Flags().StringVar(&initNotionDB, "notion-db", "", "Notion database id")
	initCmd.Flags().StringVar(&initName, "name", "", "display name")
	initCmd.Flags().StringVar(&initEmail, "email", "", "email address")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if setup, err := a.secrets.IsSetup(); err != nil {
		return err
	} else if setup {
		return fmt.Errorf("vault already initialized at %s", getStoreDir())
	}

	password, err := promptPasswordConfirm()
	if err != nil {
		return err
	}
	if err := validation.Password(password); err != nil {
		return err
	}

	if err := a.secrets.Setup(password, initName, initEmail); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if initGroqKey != "" {
		if err := a.secrets.SetSecret(secrets.NameGroqAPIKey, initGroqKey); err != nil {
			return fmt.Errorf("store AI key: %w", err)
		}
	}
	if initNotionToken != "" {
		if err := a.secrets.SetSecret(secrets.NameNotionCredentials, &secrets.NotionCredentials{
			Token:      initNotionToken,
			DatabaseID: initNotionDB,
		}); err != nil {
			return fmt.Errorf("store storage credentials: %w", err)
		}
	}

	fmt.Fprintln(os.Stderr)
	Success("Vault initialized at %s", getStoreDir())
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Next steps:")
	fmt.Fprintln(os.Stderr, "  mapctl session new NAME    Start a knowledge session")
	fmt.Fprintln(os.Stderr, "  mapctl capture TEXT        Capture into the active session")

	return nil
}
