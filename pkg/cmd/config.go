// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
package cmd

import (
	"os"

	"gopkg.in/yaml.v3"
)

// configFileName is looked up in the current directory only; there is no
// search path (no $HOME override, no /etc), matching the scope of what a
// per-project default file needs to cover.
const configFileName = "tensorgrad.yaml"

// Config holds the project-wide defaults an optional tensorgrad.yaml may
// set. Every field is optional; an absent or empty field means "no
// override", and the subcommand's own flag default applies instead.
//
// tensorgrad's source syntax requires every declaration's type and shape
// to be written out explicitly (see pkg/parser), so there is no hook for a
// config-level "default index bit-width" or "default scalar type" to
// feed, unlike --target, which a kernel's source never specifies at all and
// which compile picks purely from the CLI's own surface. Target is
// consequently the only default config currently layers in.
type Config struct {
	// Target is the default code generation target ("cpu" or "gpu"),
	// layered under compile's --target flag.
	Target string `yaml:"target"`
}

// loadConfig reads configFileName from the current directory, returning a
// zero Config (every override absent) when the file does not exist. A
// malformed file is a hard error: CLI flags are meant to layer
// over config file defaults, not silently ignore a broken one.
func loadConfig() (*Config, error) {
	data, err := os.ReadFile(configFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}

		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
