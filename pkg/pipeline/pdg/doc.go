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

// Package pdg implements the Program Dependence Graph (§4.3.5): nodes are
// statements, edges are Control- or Data-dependencies between them. The
// graph supports Weiser-style backward/forward/hybrid/thin slicing and
// Jackson & Rollins chopping, with an LRU-memoized Slicer on top.
package pdg
