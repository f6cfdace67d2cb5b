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

// Package config resolves a pipeline run's configuration (§4.7): a
// Preset supplies defaults for every stage, a Builder lets callers toggle
// stages and apply per-stage patches on top of those defaults, and a
// Provenance map records which source — preset, builder call, config
// file, or environment variable — last touched each field.
package config
