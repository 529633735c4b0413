package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tripd/tripd/internal/persist"
)

var (
	apiServer string
	apiToken  string
)

func registerAPIFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&apiServer, "server", "http://127.0.0.1:4700", "gateway base URL")
	cmd.PersistentFlags().StringVar(&apiToken, "token", "", "bearer token; without one, documents are kept locally")
}

func docStore() persist.Store {
	return persist.Choose(apiServer, apiToken, clientStateDir())
}

func clientStateDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".tripd", "client")
	}
	return filepath.Join(".tripd", "client")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(apiServer + "/health")
		if err != nil {
			printStatus("Server", "stopped")
			return nil
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running at %s", apiServer)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
		return nil
	},
}

// --- settings ---

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update user settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := docStore().GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a settings field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := docStore().SaveSettings(cmd.Context(), map[string]any{key: value}); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := docStore().GetProfile(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a profile field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := docStore().SaveProfile(cmd.Context(), map[string]any{key: value}); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func printJSON(doc any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func init() {
	registerAPIFlags(statusCmd)
	registerAPIFlags(settingsCmd)
	registerAPIFlags(profileCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}
