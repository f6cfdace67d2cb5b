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

import (
	"os"
	"strconv"
)

// LoadEnv reads the small set of CODEGRAPH_* environment overrides
// operators reach for without editing project.yaml: preset selection and
// the taint depth/path caps that benchmarking a new repo tends to need
// tweaked on the fly. No third-party env-binding library is in play here
// (none of the example programs' go.mod pulls one in for config), so this
// reads os.Getenv directly the way the rest of this layer's ambient
// config (CODEGRAPH_SOFT_LIMIT_BYTES in internal/contract) does.
func LoadEnv() (Preset, Patch, error) {
	var preset Preset
	if v, ok := os.LookupEnv("CODEGRAPH_PRESET"); ok {
		p, err := parsePreset(v)
		if err != nil {
			return "", Patch{}, err
		}
		preset = p
	}

	patch := Patch{}
	var taintPatch TaintPatch
	touched := false

	if v, ok := os.LookupEnv("CODEGRAPH_TAINT_MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", Patch{}, err
		}
		taintPatch.MaxDepth = &n
		touched = true
	}
	if v, ok := os.LookupEnv("CODEGRAPH_TAINT_MAX_PATHS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", Patch{}, err
		}
		taintPatch.MaxPaths = &n
		touched = true
	}
	if touched {
		patch.Taint = &taintPatch
	}

	if v, ok := os.LookupEnv("CODEGRAPH_CLONE_MIN_SIMILARITY"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", Patch{}, err
		}
		patch.Clone = &ClonePatch{MinSimilarity: &f}
	}

	return preset, patch, nil
}
