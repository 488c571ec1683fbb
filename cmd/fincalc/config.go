package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"fincontrol/internal/config"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the calculator defaults file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in defaults to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the defaults in effect",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := defaultsPath()
	if _, err := os.Stat(path); err == nil && !flagForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.SaveCalcDefaults(path, config.DefaultCalcDefaults()); err != nil {
		return fmt.Errorf("saving calc defaults: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Edit it to change the values the calculators start from.")
	fmt.Println()
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	defaults, err := loadDefaults()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(defaults)
	}
	fmt.Printf("# %s\n", defaultsPath())
	return toml.NewEncoder(os.Stdout).Encode(defaults)
}
