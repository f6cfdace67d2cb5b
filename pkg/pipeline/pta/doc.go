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

// Package pta implements points-to analysis (§4.3.4) in two modes:
// Steensgaard (unification-based, near-linear, coarser — every alias of a
// variable shares one points-to set) and Andersen (inclusion-based, cubic
// worst case, more precise — points-to sets only grow via subset
// constraints, never get unified). Both consume the same Constraint
// stream; callers pick the solver by precision/cost trade-off.
package pta
