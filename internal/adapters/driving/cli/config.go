package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/receiptsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Reads and writes keys of the configuration file. Environment variables
such as QONTO_LOGIN or S3_BUCKET override the file at run time.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Example: `  receiptsync config set qonto.login acme-1234
  receiptsync config set storage.backend gdrive
  receiptsync config set slack.max_lines 20`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := openConfig()
	if err != nil {
		return err
	}
	val, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, args[0])
	}
	cmd.Println(val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	val, err := file.ParseValue(key, args[1])
	if err != nil {
		return err
	}

	store, err := openConfig()
	if err != nil {
		return err
	}
	if err := store.Set(key, val); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	store, err := openConfig()
	if err != nil {
		return err
	}
	keys := store.Keys()
	if len(keys) == 0 {
		cmd.Printf("No values set in %s\n", store.Path())
		return nil
	}
	for _, key := range keys {
		val, _ := store.Get(key)
		if file.IsSecret(key) {
			val = mask(fmt.Sprint(val))
		}
		cmd.Printf("%s = %v\n", key, val)
	}
	return nil
}

// mask hides all but the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
