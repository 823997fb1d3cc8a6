package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sandevgo/recall/internal/service/ui"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question grounded in your stored notes",
	Long:  `Builds a bounded context from the most relevant notes and asks the configured chat provider. When no note matches closely enough, says so instead of fabricating an answer.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a := newApp(ctx)
		defer a.Close()

		question := strings.Join(args, " ")
		answer, pc, err := a.nb.Ask(ctx, question)
		if err != nil {
			return err
		}

		fmt.Println(answer)

		if !pc.Empty() {
			fmt.Println()
			fmt.Println(ui.TitleStyle.Render("SOURCES"))
			for _, src := range pc.Sources {
				fmt.Printf("  %s %s\n", ui.UsageStyle.Render("•"), src.Title)
			}
			fmt.Println(ui.DescStyle.Render(fmt.Sprintf("  %s", pc.Summary)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
