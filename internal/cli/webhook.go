// internal/cli/webhook.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/dealwatch/internal/secrets"
	"github.com/law-makers/dealwatch/internal/ui"
	urlutil "github.com/law-makers/dealwatch/internal/utils/url"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the stored webhook URL",
	Long: `Stores the webhook URL in the OS keyring (or a 0600 file where no keyring is
available) so it does not need to live in the environment. WEBHOOK_URL, when
set, always takes precedence.`,
}

var webhookSetCmd = &cobra.Command{
	Use:     "set <url>",
	Short:   "Store the webhook URL",
	Example: `  dealwatch webhook set https://discord.com/api/webhooks/123/abc`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := webhookStore(cmd)
		if err != nil {
			return err
		}
		if err := urlutil.ValidateURL(args[0]); err != nil {
			return err
		}
		if err := store.Set(secrets.WebhookKey, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Webhook %s stored in %s\n", ui.Success("✓"), urlutil.Redact(args[0]), store.Backend())
		return nil
	},
}

var webhookClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored webhook URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := webhookStore(cmd)
		if err != nil {
			return err
		}
		if err := store.Delete(secrets.WebhookKey); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Stored webhook removed\n", ui.Success("✓"))
		return nil
	},
}

var webhookTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Post a test message to the configured webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}
		if err := a.Webhook.Send(cmd.Context(), "dealwatch test message: notifications are working"); err != nil {
			return fmt.Errorf("webhook test failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Test message delivered\n", ui.Success("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookSetCmd, webhookClearCmd, webhookTestCmd)
}

func webhookStore(cmd *cobra.Command) (*secrets.Store, error) {
	a := GetApp(cmd)
	if a == nil || a.Secrets == nil {
		return nil, errors.New("no secret store available")
	}
	return a.Secrets, nil
}
