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

// Package pipeline runs the fixed-order DAG of analysis stages over an
// IRDocument: L1 IR build, L2 chunking, L3 cross-file resolution, L4
// occurrences, and onward into the deeper stages implemented by the
// pipeline subpackages (symbols, ssa, dfg, pta, heap, pdg, taint,
// propagation, clone, concurrency, repomap).
//
// Each stage adds to the IR — new nodes, edges, or Diagnostics — and never
// removes what an earlier stage produced. The one in-place change is L3's:
// it rewrites the TargetID of an "unresolved:" Calls edge once the callee
// is found. Stage runs are
// independent of wall-clock time: given the same IRDocument and config, a
// stage produces the same output every run.
package pipeline
