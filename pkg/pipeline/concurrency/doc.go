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

// Package concurrency implements a RacerD-inspired async race condition
// detector (§4.3.10): shared-variable accesses are collected via
// Reads/Writes/DefUse edges, await points and lock regions are found by
// pattern-matching node names, and a race is reported when a shared
// variable sees at least two accesses — at least one a write, none fully
// protected by a lock — with an await point between or before them.
package concurrency
