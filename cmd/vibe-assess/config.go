package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-assess configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.vibe-assess.yaml.
Any run flag can be given a default here, e.g. panels or filter-pass.`,
		Example: `  vibe-assess config                          # show all config
  vibe-assess config set filter-pass true     # only PASS calls by default
  vibe-assess config set workers 4            # classify four samples at once
  vibe-assess config set panels a.bed,b.bed   # default panel list
  vibe-assess config get filter-pass          # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, v)
		},
	}

	cmd.AddCommand(newConfigSetCmd(v))
	cmd.AddCommand(newConfigGetCmd(v))

	return cmd
}

func newConfigSetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, v, args[0], args[1])
		},
	}
}

func newConfigGetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, v, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command, v *viper.Viper) error {
	settings := v.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# No configuration set. Config file: ~/.vibe-assess.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, v *viper.Viper, key, value string) error {
	val, err := configValue(key, value)
	if err != nil {
		return err
	}
	v.Set(key, val)

	cfgFile := v.ConfigFileUsed()
	if cfgFile == "" {
		cfgFile, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := v.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, val, cfgFile)
	return nil
}

// configValue converts a command-line value to what run expects under key.
// List flags are stored as YAML sequences so that run reads them back intact.
func configValue(key, value string) (any, error) {
	switch key {
	case "groups":
		return parseGroups(value)
	case "vcfs", "names", "panels":
		return splitList(value), nil
	}

	switch value {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return value, nil
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseGroups(value string) ([]int, error) {
	items := splitList(value)
	groups := make([]int, 0, len(items))
	for _, item := range items {
		g, err := strconv.Atoi(item)
		if err != nil {
			return nil, &usageError{msg: fmt.Sprintf("invalid group %q", item)}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func runConfigGet(cmd *cobra.Command, v *viper.Viper, key string) error {
	val := v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}
