package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Priyank911/mapping/internal/validation"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage knowledge sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first",
	RunE:  runSessionList,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new NAME",
	Short: "Create a session and make it active",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionNew,
}

var sessionUseCmd = &cobra.Command{
	Use:   "use ID",
	Short: "Make an existing session active",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionUse,
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionRm,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionUseCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.sessions.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		Info("No sessions yet, create one with 'mapctl session new NAME'")
		return nil
	}

	activeID := ""
	if active, err := a.sessions.GetActive(); err == nil && active != nil {
		activeID = active.ID
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCAPTURES\tPAGE\tACTIVE")
	for _, s := range sessions {
		marker := ""
		if s.ID == activeID {
			marker = "*"
		}
		page := s.RemotePageID
		if page == "" {
			page = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.Name, s.ContentCount, page, marker)
	}
	return w.Flush()
}

func runSessionNew(_ *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if err := validation.SessionName(name); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.sessions.Create(name)
	if err != nil {
		return err
	}
	Success("Session %s created and active (%s)", Bold("%s", session.Name), session.ID)
	return nil
}

func runSessionUse(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sessions.SetActive(args[0]); err != nil {
		return err
	}
	Success("Active session set to %s", args[0])
	return nil
}

func runSessionRm(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sessions.Delete(args[0]); err != nil {
		return err
	}
	Success("Session %s deleted", args[0])
	return nil
}
