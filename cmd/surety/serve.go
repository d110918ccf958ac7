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
	"github.com/blinklabs-io/surety/internal/config"
	"github.com/blinklabs-io/surety/internal/node"
	"github.com/spf13/cobra"
)

func serveRun(cfg *config.Config) error {
	logger, err := setupProcess(cfg.Debug)
	if err != nil {
		return err
	}
	return node.Run(cfg, logger)
}

func serveRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	return serveRun(cfg)
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger API",
		RunE:  serveRunE,
	}
}

func devCommand() *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Serve a seeded dev ledger with simulated oracles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			cfg.RunMode = config.RunModeDev
			if seedFile != "" {
				cfg.DevSeedFile = seedFile
			}
			return serveRun(cfg)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "path to a seed plan YAML file")
	return cmd
}
