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

// Package query holds the query-engine primitives (§4.5): a canonicalizable
// Expression literal tree, Node/Edge selectors, path traversal limits,
// search-hit rows, and multi-signal fusion strategies. It operates purely
// in memory over values a storage.Backend has already loaded; it never
// talks to a backend directly (that composition lives in pkg/orchestrator).
package query
