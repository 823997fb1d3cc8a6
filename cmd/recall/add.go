package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <url|file>",
	Short: "Acquire a source and store it as a note",
	Long:  `Extracts text from a URL or local file through the strategy escalation chain and stores the result. A failed extraction still stores a metadata-only placeholder.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a := newApp(ctx)
		defer a.Close()

		note, result, err := a.nb.AddSource(ctx, sourceRefFromArg(args[0]))
		if err != nil {
			return err
		}

		if result.Success {
			fmt.Println(ui.OkStyle.Render("✓ note saved"))
			fmt.Printf("  %s %s\n", ui.FlagStyle.Render("id:"), note.ID)
			fmt.Printf("  %s %s\n", ui.FlagStyle.Render("title:"), note.Title)
			fmt.Printf("  %s %s (confidence %.2f)\n", ui.FlagStyle.Render("strategy:"), result.StrategyUsed, result.Confidence)
			fmt.Printf("  %s %d chars in %s\n", ui.FlagStyle.Render("extracted:"), len(note.Text), result.ProcessingTime.Round(time.Millisecond))
			return nil
		}

		fmt.Println(ui.WarnStyle.Render("! extraction failed, placeholder saved"))
		fmt.Printf("  %s %s\n", ui.FlagStyle.Render("id:"), note.ID)
		fmt.Printf("  %s %s\n", ui.FlagStyle.Render("title:"), note.Title)
		fmt.Printf("  %s %s\n", ui.FlagStyle.Render("error:"), result.ErrorMessage)
		return nil
	},
}

// sourceRefFromArg treats anything that exists on disk as a file and
// everything else as a URL.
func sourceRefFromArg(arg string) core.SourceRef {
	if _, err := os.Stat(arg); err == nil && !strings.Contains(arg, "://") {
		return core.SourceRef{FilePath: arg}
	}
	return core.SourceRef{URL: arg}
}

func init() {
	rootCmd.AddCommand(addCmd)
}
