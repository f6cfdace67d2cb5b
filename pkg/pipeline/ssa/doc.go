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

// Package ssa builds a Braun-style SSA form per function (§4.3.2): phi
// nodes are inserted lazily, only at join points where a variable read
// actually needs one, rather than up front via dominance-frontier
// computation. The L8 stage adds a function's blocks in the order their
// nodes appear in the IR document and seals them once every definition is
// recorded; it does not compute a reverse post-order of the CFG.
package ssa
