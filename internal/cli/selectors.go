// internal/cli/selectors.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/dealwatch/internal/navigator"
	"github.com/law-makers/dealwatch/internal/ui"
)

var selectorsCmd = &cobra.Command{
	Use:   "selectors",
	Short: "Print the active markup contract",
	Long: `Prints the listing-card selectors and popup locators in use. The listing
markup is not a stable API; when extraction breaks, compare these with the
live page.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		w := cmd.OutOrStdout()
		sel := a.Extractor.Selectors()

		fmt.Fprintf(w, "%s %s\n", ui.Bold("Selectors version"), sel.Version)
		for _, row := range [][2]string{
			{"card", sel.Card},
			{"title", sel.Title},
			{"price", sel.Price},
			{"info list", sel.InfoList},
			{"departure", sel.Departure},
			{"duration", sel.Duration},
		} {
			fmt.Fprintf(w, "  %-12s %s\n", row[0], row[1])
		}

		fmt.Fprintf(w, "\n%s\n", ui.Bold("Popup steps"))
		for _, step := range navigator.DefaultSteps() {
			for i, action := range step.Actions {
				name := step.Name
				if i > 0 {
					name = ""
				}
				fmt.Fprintf(w, "  %-16s %s\n", name, action.Target)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectorsCmd)
}
