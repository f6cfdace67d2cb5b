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

// Package langplugin parses source files into model.IRDocument fragments
// (§4.2). Each language has a Plugin implementation that walks a
// Tree-sitter AST (or, for Protobuf, a line-oriented grammar) and emits
// File/Class/Function/... nodes plus Defines/Contains/Calls/... edges.
//
// Per-file walk state lives in a per-call context struct, never on the
// Plugin value. The Tree-sitter plugins do hold one parser each, which
// every ParseFile call reuses, so a single Plugin value is not safe for
// concurrent ParseFile calls.
package langplugin
