// This file is part of Padcorder.
//
// Padcorder is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Padcorder is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Padcorder.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/padcorder/padcorder/fault"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low to high):
//
//  1. defaults (New())
//  2. the YAML file at path, when path is not empty and the file exists
//  3. environment (prefix PADCORDER_, eg. PADCORDER_POLLING_HZ)
func Load(path string) (*Config, error) {
	cfg := *New()

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fault.Errorf(BadValue, path, err.Error())
			}
		}
	}

	// flat keys: PADCORDER_STICK_DEADZONE maps to stick_deadzone,
	// matching the koanf tags on the struct
	envProvider := env.Provider("PADCORDER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PADCORDER_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fault.Errorf(BadValue, "environment", err.Error())
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fault.Errorf(BadValue, "unmarshal", err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
