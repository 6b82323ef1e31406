package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Priyank911/mapping/internal/capture"
	"github.com/Priyank911/mapping/internal/validation"
)

var captureSourceURL string

var captureCmd = &cobra.Command{
	Use:   "capture [TEXT]",
	Short: "Capture text into the active session",
	Long: `Capture text into the active session: the structuring service titles and
cross-links it, and the result is appended to the session's Notion page.

Text is read from the argument, or from stdin when no argument is given.

Examples:
  mapctl capture "Selected text from a page" --url https://example.com/article
  pbpaste | mapctl capture`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVar(&captureSourceURL, "url", "", "source page URL")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(raw))
	}
	if err := validation.CaptureText(text); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline().Capture(cmd.Context(), capture.Request{
		Text:      text,
		SourceURL: captureSourceURL,
	})
	if err != nil {
		return err
	}

	if result.PageCreated {
		Success("Created page %s with section %s", result.PageID, Bold("%s", result.Title))
	} else {
		Success("Appended section %s", Bold("%s", result.Title))
	}
	if result.UsedFallback {
		Warning("Structuring service unavailable, used a fallback title")
	}
	if n := len(result.Connections); n > 0 {
		Info("Linked to %d existing section(s)", n)
	}
	return nil
}
