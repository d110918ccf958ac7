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
	"os"

	"github.com/blinklabs-io/surety/database/sops"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/spf13/cobra"
)

func genesisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Manage the ledger genesis file",
	}
	cmd.AddCommand(genesisEncryptCommand())
	cmd.AddCommand(genesisCheckCommand())
	return cmd
}

func genesisEncryptCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "encrypt <genesis-file>",
		Short: "Encrypt a genesis file with the SOPS master keys from the environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if sops.IsEncrypted(data) {
				return errors.New("genesis file is already encrypted")
			}
			// Refuse to encrypt a genesis the node would reject
			if _, err := ledger.ParseGenesis(data); err != nil {
				return err
			}
			encrypted, err := sops.Encrypt(data)
			if err != nil {
				return fmt.Errorf("encrypt genesis: %w", err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(encrypted)
				return err
			}
			return os.WriteFile(output, encrypted, 0o600)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the encrypted file here instead of stdout")
	return cmd
}

func genesisCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <genesis-file>",
		Short: "Validate a genesis file, decrypting it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genesis, err := ledger.LoadGenesisFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"owner: %s\nfirst airline: %s (%s)\nlogic ID: %s\n",
				genesis.Owner,
				genesis.FirstAirline.Name,
				genesis.FirstAirline.Address,
				genesis.LogicID,
			)
			return nil
		},
	}
	return cmd
}
