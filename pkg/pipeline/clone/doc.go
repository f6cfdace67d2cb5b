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

// Package clone implements clone-pair detection (§4.3.9): Type-1
// (identical), Type-2 (renamed), Type-3 (gapped), Type-4 (semantic)
// classification over code fragments, with per-type validity thresholds
// and a quality score combining similarity, length, and detection
// confidence.
package clone
