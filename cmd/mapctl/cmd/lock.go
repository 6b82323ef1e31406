package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vault",
	Long:  "Lock the vault, clearing the encryption key from memory.",
	RunE:  runLock,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the vault",
	Long: `Unlock the vault by entering your password.

The password can also be provided via the MAPPING_PASSWORD environment variable.`,
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
}

func runLock(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.secrets.Lock(); err != nil {
		return err
	}
	Success("Vault locked")
	return nil
}

func runUnlock(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	password := os.Getenv("MAPPING_PASSWORD")
	if password == "" {
		password, err = promptPassword("Enter password: ")
		if err != nil {
			return err
		}
	}

	if err := a.secrets.Unlock(password); err != nil {
		return err
	}
	Success("Vault unlocked")
	return nil
}
