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

// Builder assembles a Config from a Preset plus an ordered sequence of
// stage toggles and patches, each recorded against its own Provenance
// (§4.7). Builder methods are not safe for concurrent use; build one
// per pipeline run.
type Builder struct {
	preset   Preset
	stages   map[pipeline.StageName]bool
	settings Settings
	prov     ProvenanceMap
	err      error
}

// NewBuilder seeds a Builder from preset's defaults.
func NewBuilder(preset Preset) *Builder {
	b := &Builder{
		preset:   preset,
		stages:   defaultStageSet(preset),
		settings: defaultSettings(preset),
		prov:     make(ProvenanceMap),
	}
	if !preset.Valid() {
		b.err = &invalidPresetError{preset}
	}
	return b
}

type invalidPresetError struct{ preset Preset }

func (e *invalidPresetError) Error() string {
	return "config: unknown preset \"" + string(e.preset) + "\""
}

// WithStage turns name on or off, overriding the preset's default.
func (b *Builder) WithStage(name pipeline.StageName, on bool) *Builder {
	if b.stages == nil {
		b.stages = make(map[pipeline.StageName]bool)
	}
	b.stages[name] = on
	b.prov["stage."+string(name)] = ProvenanceBuilder
	return b
}

// ApplyPatch applies patch's settings and, if present, its stage toggles,
// recording every touched field as coming from src.
func (b *Builder) ApplyPatch(patch Patch, src Provenance) *Builder {
	toggles := applyPatch(&b.settings, patch, b.prov, src)
	for name, on := range toggles {
		b.stages[name] = on
		b.prov["stage."+string(name)] = src
	}
	return b
}

// Build validates the accumulated configuration and returns it, or the
// first validation error (§4.7 "builder rejects violating
// configurations").
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	cfg := &Config{
		Preset:     b.preset,
		Stages:     cloneStageSet(b.stages),
		Settings:   b.settings,
		Provenance: b.prov,
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cloneStageSet(in map[pipeline.StageName]bool) map[pipeline.StageName]bool {
	out := make(map[pipeline.StageName]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
