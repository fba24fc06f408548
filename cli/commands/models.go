package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petal-labs/mistral"
	"github.com/petal-labs/mistral/cli/keystore"
)

func (a *App) newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and their capabilities",
		Long: `List known models and their capabilities.

By default the built-in model table is shown. With --remote the models
available to the authenticated account are fetched from the API.`,
		RunE: a.runModels,
	}

	cmd.Flags().BoolVar(&a.modelsRemote, "remote", false, "Query the API instead of the built-in table")

	return cmd
}

func (a *App) runModels(cmd *cobra.Command, args []string) error {
	if a.modelsRemote {
		return a.runRemoteModels()
	}

	models := mistral.Models()

	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}

	for _, m := range models {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		fmt.Fprintf(a.stdout, "%-28s %-24s %s\n", m.ID, m.DisplayName, strings.Join(caps, ","))
	}
	return nil
}

func (a *App) runRemoteModels() error {
	apiKey, err := a.resolveAPIKey()
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return exitWithCode(ExitValidation, fmt.Errorf("no API key: set %s or run 'mistral keys set' first", mistral.DefaultAPIKeyEnvVar))
		}
		return exitWithCode(ExitValidation, fmt.Errorf("failed to get API key: %w", err))
	}

	client := a.newClient(apiKey, a.cfg)
	list, err := client.ListModels(context.Background())
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list.Data)
	}

	for _, m := range list.Data {
		fmt.Fprintf(a.stdout, "%-28s %s\n", m.ID, m.OwnedBy)
	}
	return nil
}
