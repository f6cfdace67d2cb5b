// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package config

import "github.com/kraklabs/codegraph/pkg/pipeline"

// Config is a fully resolved pipeline configuration: the preset it
// started from, which stages run, their settings, and a provenance
// record of who last touched each setting (§4.7).
type Config struct {
	Preset     Preset
	Stages     map[pipeline.StageName]bool
	Settings   Settings
	Provenance ProvenanceMap
}

// Enabled reports whether name is turned on in this configuration.
func (c *Config) Enabled(name pipeline.StageName) bool {
	return c.Stages[name]
}
