package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault and session status",
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all local state",
	Long: `Wipe all local state, including the encryption key.

This is the forgot-password path: every stored secret and session is deleted
and previously encrypted data becomes permanently unrecoverable.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	setup, err := a.secrets.IsSetup()
	if err != nil {
		return err
	}
	locked, err := a.secrets.IsLocked()
	if err != nil {
		return err
	}
	captures, err := a.sessions.LifetimeCaptures()
	if err != nil {
		return err
	}

	fmt.Printf("Store:             %s\n", getStoreDir())
	fmt.Printf("Setup complete:    %v\n", setup)
	fmt.Printf("Locked:            %v\n", locked)
	fmt.Printf("Lifetime captures: %d\n", captures)

	active, err := a.sessions.GetActive()
	if err != nil {
		return err
	}
	if active == nil {
		fmt.Println("Active session:    none")
	} else {
		fmt.Printf("Active session:    %s (%d captures)\n", active.Name, active.ContentCount)
	}
	return nil
}

func runReset(_ *cobra.Command, _ []string) error {
	fmt.Fprint(os.Stderr, "This permanently destroys all local data. Type 'reset' to confirm: ")
	var confirm string
	fmt.Fscanln(os.Stdin, &confirm)
	if strings.TrimSpace(confirm) != "reset" {
		Warning("Aborted")
		return nil
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.secrets.ClearAll(); err != nil {
		return err
	}
	Success("All local state wiped")
	return nil
}
