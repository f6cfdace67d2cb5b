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

// Package taint implements the SOTA taint-analysis pipeline (§4.3.6):
// base interprocedural reachability from sources to sinks over a call
// graph, then a chain of precision filters — flow-sensitive (SSA
// versions), field-sensitive, and sanitizer — each of which can only
// shrink the path set, never grow it.
package taint
