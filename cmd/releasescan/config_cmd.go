package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/releasescan/internal/config"
	"github.com/Nomadcxx/releasescan/internal/mediainfo"
	"github.com/Nomadcxx/releasescan/internal/paths"
	"github.com/Nomadcxx/releasescan/internal/radarr"
	"github.com/Nomadcxx/releasescan/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage releasescan configuration",
		Long: `Commands for managing releasescan configuration.

The config file is stored at: ~/.config/releasescan/config.toml

Examples:
  releasescan config init              # Create default config file
  releasescan config show              # Display current configuration
  releasescan config test              # Test roots, Radarr and ffprobe
  releasescan config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigTestCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// configPath is --config when set, else the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return paths.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			ui.SuccessMsg(out, "Created config file: %s", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Set watch.roots and, optionally, the radarr section")
			fmt.Fprintln(out, "  2. Run 'releasescan config test' to verify them")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Radarr.APIKey = maskAPIKey(cfg.Radarr.APIKey)

			content, err := cfg.ToTOML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test configured roots and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failures := 0

			ui.Section(out, "Watch roots")
			if len(cfg.Watch.Roots) == 0 {
				ui.WarningMsg(out, "No watch roots configured")
			}
			for _, dir := range cfg.Watch.Roots {
				if err := testReadable(dir); err != nil {
					failures++
					ui.ErrorMsg(out, "%s (%v)", dir, err)
				} else {
					ui.SuccessMsg(out, "%s", dir)
				}
			}

			ui.Section(out, "Radarr")
			if !cfg.Radarr.Enabled {
				ui.InfoMsg(out, "Disabled")
			} else {
				client := radarr.NewClient(radarr.Config{
					URL:     cfg.Radarr.URL,
					APIKey:  cfg.Radarr.APIKey,
					Timeout: time.Duration(cfg.Radarr.TimeoutSeconds) * time.Second,
				})
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				status, err := client.GetSystemStatus(ctx)
				cancel()
				if err != nil {
					failures++
					ui.ErrorMsg(out, "%s (%v)", cfg.Radarr.URL, err)
				} else {
					ui.SuccessMsg(out, "%s %s at %s", status.AppName, status.Version, cfg.Radarr.URL)
				}
			}

			ui.Section(out, "ffprobe")
			if !cfg.Probe.Enabled {
				ui.InfoMsg(out, "Disabled")
			} else if p := mediainfo.NewProber(cfg.Probe.FFprobe); p.Available() {
				ui.SuccessMsg(out, "%s found", p.Path)
			} else {
				ui.WarningMsg(out, "%s not found, container metadata will fall back to file names", p.Path)
			}

			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			return nil
		},
	}
}

func testReadable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	return f.Close()
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
