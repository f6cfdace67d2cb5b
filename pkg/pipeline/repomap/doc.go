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

// Package repomap builds a ranked, budget-bounded summary of a repository
// (§4.3.11 / L16): a PageRank pass over the call/extends/implements graph
// scores every class, interface, function and method by how central it is
// to the rest of the codebase, then a Builder groups the top-ranked
// symbols by file and truncates the result to a caller-supplied symbol
// budget so the map stays cheap to hand to a downstream consumer (an LLM
// context window, a dashboard, a CLI summary).
package repomap
