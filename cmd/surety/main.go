// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/surety/database/plugin"
	"github.com/blinklabs-io/surety/internal/config"
	"github.com/blinklabs-io/surety/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "surety"

// rootFlags holds the persistent flags shared by every subcommand
type rootFlags struct {
	configFile     string
	blobPlugin     string
	metadataPlugin string
	debug          bool
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// setupProcess installs the default logger and sizes GOMAXPROCS for the
// container CPU quota
func setupProcess(debug bool) (*slog.Logger, error) {
	logger := newLogger(os.Stdout, debug)
	slog.SetDefault(logger)
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		logger.Info(fmt.Sprintf(format, v...), "component", programName)
	}))
	if err != nil {
		return nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger, nil
}

func writePlugins(buf *strings.Builder, pluginType plugin.PluginType) {
	for _, p := range plugin.GetPlugins(pluginType) {
		fmt.Fprintf(buf, "  %s: %s\n", p.Name, p.Description)
	}
}

// pluginListing renders the plugins for each store flag set to "list". It
// returns an empty string when neither flag asks for a listing.
func pluginListing(blobPlugin, metadataPlugin string) string {
	var sections []string
	for _, req := range []struct {
		value      string
		title      string
		pluginType plugin.PluginType
	}{
		{blobPlugin, "blob", plugin.PluginTypeBlob},
		{metadataPlugin, "metadata", plugin.PluginTypeMetadata},
	} {
		if req.value != "list" {
			continue
		}
		var buf strings.Builder
		fmt.Fprintf(&buf, "Available %s plugins:\n", req.title)
		writePlugins(&buf, req.pluginType)
		sections = append(sections, buf.String())
	}
	return strings.Join(sections, "\n")
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all available plugins",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), pluginListing("list", "list"))
		},
	}
}

// configFrom returns the config loaded by the root command
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return cfg, nil
}

func newRootCommand() (*cobra.Command, error) {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Flight delay insurance ledger",
		SilenceUsage: true,
		RunE:         serveRunE,
	}
	pflags := rootCmd.PersistentFlags()
	pflags.BoolVarP(&flags.debug, "debug", "D", false, "enable debug logging")
	pflags.StringVar(&flags.configFile, "config", "", "path to config file")
	pflags.StringVarP(
		&flags.blobPlugin,
		"blob", "b",
		config.DefaultBlobPlugin,
		"blob store plugin to use, 'list' to show available",
	)
	pflags.StringVarP(
		&flags.metadataPlugin,
		"metadata", "m",
		config.DefaultMetadataPlugin,
		"metadata store plugin to use, 'list' to show available",
	)
	if err := plugin.PopulateCmdlineOptions(pflags); err != nil {
		return nil, fmt.Errorf("add plugin flags: %w", err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// Listing happens before any config is loaded
		if listing := pluginListing(flags.blobPlugin, flags.metadataPlugin); listing != "" {
			fmt.Fprint(cmd.OutOrStdout(), listing)
			os.Exit(0)
		}
		cfg, err := config.LoadConfig(flags.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Flags win over the config file only when set explicitly
		if pflags.Changed("blob") {
			cfg.BlobPlugin = flags.blobPlugin
		}
		if pflags.Changed("metadata") {
			cfg.MetadataPlugin = flags.metadataPlugin
		}
		cfg.Debug = cfg.Debug || flags.debug
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(
		serveCommand(),
		devCommand(),
		genesisCommand(),
		listCommand(),
		versionCommand(),
	)
	return rootCmd, nil
}

func main() {
	rootCmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// cobra has already printed the error
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
