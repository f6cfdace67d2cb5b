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

// Package orchestrator mediates between agents (human or AI) and the set
// of index plugins (vector, lexical, graph, …) that keep a repository's
// indices in sync with its IR (§4.6). It owns a monotonically increasing
// transaction counter, per-agent sessions carrying pending change
// operations, and a plugin registry each member of which tracks how far
// it has applied the transaction stream. Agents begin a session, queue
// ChangeOps against it, and commit; the orchestrator serializes
// concurrently pending sessions by node-id conflict, persists the winner
// through a storage.Backend, and fans the resulting delta out to every
// interested plugin before reporting success.
package orchestrator
