// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/dealwatch/internal/app"
	"github.com/law-makers/dealwatch/internal/config"
	"github.com/law-makers/dealwatch/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealwatch",
	Short: "Watch a travel listing and post deals below a price to a webhook",
	Long: `Dealwatch opens the travel listing in headless Chrome, clicks away cookie
banners and promotional popups, and posts every offer priced per person below
the configured maximum to a chat webhook.

Run it from cron or a scheduled CI job; each invocation is one check.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// ExecuteContext runs the CLI. ctx is cancelled on interrupt so a running
// check can close its browser before the process exits.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	config.RegisterFlags(rootCmd)

	// Load configuration and build the application before any subcommand runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		app.ConfigureLogging(cfg)

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return nil
		}
		return a.Close(cmd.Context())
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s\n", ui.Paint(ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	fmt.Fprintf(w, "\n%s\n", ui.Paint(ui.ColorBold+ui.ColorWhite, "Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Paint(ui.ColorCyan, cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s %s\n", ui.Paint(ui.ColorCyan, cmd.CommandPath()), ui.Warn("<command>"), ui.Dim("[flags]"))
	}

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Paint(ui.ColorBold+ui.ColorWhite, "Examples"))
		for _, example := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(example)
			switch {
			case trimmed == "":
			case strings.HasPrefix(trimmed, "#"):
				fmt.Fprintf(w, "  %s\n", ui.Dim(trimmed))
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+trimmed))
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", ui.Paint(ui.ColorBold+ui.ColorWhite, "Commands"))

		maxLen := 0
		var available []*cobra.Command
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				available = append(available, c)
				maxLen = max(maxLen, len(c.Name()))
			}
		}
		for _, c := range available {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(w, "  %s%s%s\n", ui.Paint(ui.ColorCyan, c.Name()), padding, ui.Dim(c.Short))
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Paint(ui.ColorBold+ui.ColorWhite, "Flags"))
		printFlagsTo(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Paint(ui.ColorBold+ui.ColorWhite, "Global Flags"))
		printFlagsTo(w, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(w)
}

// printFlagsTo prints flag usages with color formatting to the specified writer
func printFlagsTo(w io.Writer, flagUsages string) {
	for _, line := range strings.Split(flagUsages, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		trimmed := strings.TrimLeft(line, " ")
		flagPart, descPart, found := strings.Cut(trimmed, "  ")
		if !strings.HasPrefix(trimmed, "-") || !found {
			fmt.Fprintf(w, "  %s\n", ui.Dim(trimmed))
			continue
		}

		padding := strings.Repeat(" ", max(2, 30-len(flagPart)))
		fmt.Fprintf(w, "  %s%s%s\n", ui.Success(flagPart), padding, ui.Dim(strings.TrimSpace(descPart)))
	}
}
