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

// Package propagation implements a generic abstract-interpretation
// harness (§4.3.8): a lattice ⟨V, ⊑, ⊔, ⊓, ⊥, ⊤⟩ paired with per-domain
// abstract operators, driven to a fixpoint over a flow graph by a
// PropagationEngine in either Sparse (SSA use-def worklist) or Dense
// (iterate-all-until-stable) mode.
package propagation
