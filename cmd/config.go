package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cnodash/internal/config"
	"github.com/KaramelBytes/cnodash/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cnodash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "areas_path: %s\n", cfg.AreasPath)
		fmt.Fprintf(out, "registry_path: %s\n", cfg.RegistryPath)
		fmt.Fprintf(out, "encoding: %s\n", cfg.Encoding)
		fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "cache_size: %d\n", cfg.CacheSize)
		fmt.Fprintf(out, "watch: %t\n", cfg.Watch)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Reload so flag overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "areas_path":
			c.AreasPath = val
		case "registry_path":
			c.RegistryPath = val
		case "encoding":
			c.Encoding = val
		case "delimiter":
			c.Delimiter = val
		case "listen_addr":
			c.ListenAddr = val
		case "cache_size":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for cache_size: %w", err)
			}
			c.CacheSize = i
		case "watch":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for watch: %w", err)
			}
			c.Watch = b
		case "log_level":
			c.LogLevel = strings.ToLower(val)
		case "log_format":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if _, err := logging.New(c.LogLevel, c.LogFormat); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
