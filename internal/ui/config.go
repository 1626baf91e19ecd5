package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  daybook config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(cmd.OutOrStdout())
		},
	}
}

func runConfigInteractive(w io.Writer) error {
	configPath := config.DefaultConfigPath()
	fmt.Fprintf(w, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(w, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(w, "Created %s\n\n", configPath)
	}

	printConfig(w, cfg)

	reader := bufio.NewReader(os.Stdin)
	if !promptYesNo(reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Schedule.User = promptValue(reader, "User", cfg.Schedule.User)
	cfg.Schedule.Timezone = promptValue(reader, "Timezone", cfg.Schedule.Timezone)
	cfg.Schedule.AwakeHours = promptHours(reader, cfg.Schedule.AwakeHours)
	cfg.Storage.DBPath = promptValue(reader, "Database path", cfg.Storage.DBPath)
	cfg.Server.Addr = promptValue(reader, "Server address", cfg.Server.Addr)
	cfg.Server.RequestTimeout = promptValue(reader, "Request timeout", cfg.Server.RequestTimeout)
	cfg.Log.Level = promptValue(reader, "Log level", cfg.Log.Level)
	cfg.LLM.Provider = promptValue(reader, "LLM provider (ollama, lmstudio, openai)", cfg.LLM.Provider)
	if cfg.LLM.Provider != "" {
		cfg.LLM.Model = promptValue(reader, "LLM model", cfg.LLM.Model)
		cfg.LLM.BaseURL = promptValue(reader, "LLM base URL (empty for default)", cfg.LLM.BaseURL)
	}
	cfg.UI.Theme = promptValue(reader, "TUI theme (mocha, frappe, latte)", cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[schedule]")
	fmt.Fprintf(w, "  user             = %s\n", cfg.Schedule.User)
	fmt.Fprintf(w, "  timezone         = %s\n", cfg.Schedule.Timezone)
	fmt.Fprintf(w, "  awake_hours      = %s\n", formatHours(cfg.Schedule.AwakeHours))
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[server]")
	fmt.Fprintf(w, "  addr             = %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "  request_timeout  = %s\n", cfg.Server.RequestTimeout)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  development      = %t\n", cfg.Log.Development)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider         = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model            = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url         = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme            = %s\n", cfg.UI.Theme)
}

func promptYesNo(reader *bufio.Reader, question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Printf("  %s: ", label)
	} else {
		fmt.Printf("  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptHours(reader *bufio.Reader, current availability.AwakeHours) availability.AwakeHours {
	label := "Awake hours (e.g. weekdays=9-17,saturday=10-13)"
	for {
		fmt.Printf("  %s [%s]: ", label, formatHours(current))
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return current
		}
		hours, err := parseHours(input)
		if err == nil {
			return hours
		}
		fmt.Printf("  Invalid hours: %v\n", err)
	}
}
