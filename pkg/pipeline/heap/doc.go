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

// Package heap implements a KLEE-style symbolic memory model (§4.3.7):
// memory is a collection of MemoryObjects rather than a flat byte array,
// addressed through an object store and an address space. This supports
// copy-on-write forking of program states along a path condition and
// sound handling of symbolic pointers.
package heap
