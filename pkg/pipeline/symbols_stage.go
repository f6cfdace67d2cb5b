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

package pipeline

import (
	"context"

	"github.com/kraklabs/codegraph/pkg/pipeline/symbols"
)

// SymbolsStage implements L5: building the scope/symbol table the
// downstream SSA, DFG, and points-to stages resolve reads/writes against.
type SymbolsStage struct {
	// Table is populated by Execute and read by later stages sharing the
	// same Run.
	Table *symbols.Table
}

func (s *SymbolsStage) Name() StageName { return L5Symbols }

func (s *SymbolsStage) Execute(ctx context.Context, r *Run) error {
	s.Table = symbols.Build(r.Doc)
	return nil
}
