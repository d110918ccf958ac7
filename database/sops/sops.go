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

// Package sops wraps SOPS decryption and encryption of YAML documents such
// as the genesis file
package sops

import (
	"errors"
	"fmt"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	"github.com/getsops/sops/v3/age"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	yamlstore "github.com/getsops/sops/v3/stores/yaml"
	"github.com/getsops/sops/v3/version"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

var ErrNoMasterKey = errors.New(
	"SOPS requires at least one master key to encrypt: set SURETY_AGE_RECIPIENTS, SURETY_GCP_KMS_RESOURCE_ID or SURETY_AWS_KMS_KEY_ARNS",
)

// Keys names the master keys a document is encrypted to. Each non-empty
// source becomes its own key group.
type Keys struct {
	AgeRecipients    string `envconfig:"AGE_RECIPIENTS"`
	GCPKMSResourceID string `envconfig:"GCP_KMS_RESOURCE_ID"`
	AWSKMSKeyARNs    string `envconfig:"AWS_KMS_KEY_ARNS"`
	AWSKMSProfile    string `envconfig:"AWS_KMS_PROFILE"`
}

// KeysFromEnv reads the SURETY_-prefixed key settings from the environment
func KeysFromEnv() (Keys, error) {
	var k Keys
	if err := envconfig.Process("surety", &k); err != nil {
		return Keys{}, err
	}
	return k, nil
}

func (k Keys) keyGroups() ([]sopsapi.KeyGroup, error) {
	var groups []sopsapi.KeyGroup
	add := func(keys []skeys.MasterKey) {
		if len(keys) > 0 {
			groups = append(groups, keys)
		}
	}
	if k.AgeRecipients != "" {
		ageKeys, err := age.MasterKeysFromRecipients(k.AgeRecipients)
		if err != nil {
			return nil, fmt.Errorf("age recipients: %w", err)
		}
		keys := make([]skeys.MasterKey, 0, len(ageKeys))
		for _, key := range ageKeys {
			keys = append(keys, key)
		}
		add(keys)
	}
	if k.GCPKMSResourceID != "" {
		var keys []skeys.MasterKey
		for _, key := range gcpkms.MasterKeysFromResourceIDString(k.GCPKMSResourceID) {
			keys = append(keys, key)
		}
		add(keys)
	}
	if k.AWSKMSKeyARNs != "" {
		var keys []skeys.MasterKey
		for _, key := range awskms.MasterKeysFromArnString(k.AWSKMSKeyARNs, nil, k.AWSKMSProfile) {
			keys = append(keys, key)
		}
		add(keys)
	}
	if len(groups) == 0 {
		return nil, ErrNoMasterKey
	}
	return groups, nil
}

// IsEncrypted returns true if the YAML document carries SOPS metadata
func IsEncrypted(data []byte) bool {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	_, ok := doc["sops"]
	return ok
}

// Decrypt decrypts a SOPS-encrypted YAML document. Key material is located
// the way the sops CLI does it (SOPS_AGE_KEY, cloud credentials, etc).
func Decrypt(data []byte) ([]byte, error) {
	return decrypt.Data(data, "yaml")
}

// Encrypt encrypts a plain YAML document to the keys configured in the
// environment
func Encrypt(data []byte) ([]byte, error) {
	keys, err := KeysFromEnv()
	if err != nil {
		return nil, err
	}
	return EncryptTo(data, keys)
}

// EncryptTo encrypts a plain YAML document to the given keys
func EncryptTo(data []byte, keys Keys) ([]byte, error) {
	if IsEncrypted(data) {
		return nil, errors.New("already encrypted")
	}
	groups, err := keys.keyGroups()
	if err != nil {
		return nil, err
	}
	store := yamlstore.NewStore(&config.YAMLStoreConfig{})
	branches, err := store.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	tree := sopsapi.Tree{
		Branches: branches,
		Metadata: sopsapi.Metadata{
			KeyGroups: groups,
			Version:   version.Version,
		},
	}
	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("generate data key: %w", errors.Join(errs...))
	}
	err = scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	})
	if err != nil {
		return nil, fmt.Errorf("encrypt document: %w", err)
	}
	ret, err := store.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("emit document: %w", err)
	}
	return ret, nil
}
