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

package repomap

import (
	"sort"

	"github.com/kraklabs/codegraph/pkg/model"
)

// Builder groups ranked symbols into per-file summaries, bounded to a
// fixed symbol budget so a repo map stays cheap to consume regardless of
// repository size.
type Builder struct {
	Ranker *Ranker

	// SymbolBudget caps how many symbols the map keeps overall, taken
	// in descending rank order across the whole repository. Zero means
	// unbounded.
	SymbolBudget int
}

// NewBuilder returns a Builder with a fresh Ranker and no budget.
func NewBuilder() *Builder {
	return &Builder{Ranker: NewRanker()}
}

// Build ranks every symbol in doc, keeps the top SymbolBudget of them
// (or all of them, if unbounded), and groups what's left by file, each
// file's symbols sorted by descending rank and each file ordered by its
// own aggregate rank.
func (b *Builder) Build(doc *model.IRDocument) []FileSummary {
	ranker := b.Ranker
	if ranker == nil {
		ranker = NewRanker()
	}
	scores := ranker.Rank(doc)

	var symbols []Symbol
	for _, n := range doc.Nodes {
		score, ok := scores[n.ID]
		if !ok {
			continue
		}
		symbols = append(symbols, Symbol{
			ID:       n.ID,
			FQN:      n.FQN,
			Name:     n.Name,
			FilePath: n.FilePath,
			Kind:     n.Kind,
			Line:     n.Span.StartLine,
			Rank:     score,
		})
	}

	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Rank != symbols[j].Rank {
			return symbols[i].Rank > symbols[j].Rank
		}
		return symbols[i].FQN < symbols[j].FQN
	})

	if b.SymbolBudget > 0 && len(symbols) > b.SymbolBudget {
		symbols = symbols[:b.SymbolBudget]
	}

	byFile := make(map[string][]Symbol)
	var fileOrder []string
	for _, s := range symbols {
		if _, ok := byFile[s.FilePath]; !ok {
			fileOrder = append(fileOrder, s.FilePath)
		}
		byFile[s.FilePath] = append(byFile[s.FilePath], s)
	}

	summaries := make([]FileSummary, 0, len(fileOrder))
	for _, file := range fileOrder {
		fileSymbols := byFile[file]
		sort.Slice(fileSymbols, func(i, j int) bool {
			return fileSymbols[i].Rank > fileSymbols[j].Rank
		})
		var total float64
		for _, s := range fileSymbols {
			total += s.Rank
		}
		summaries = append(summaries, FileSummary{
			FilePath:  file,
			Symbols:   fileSymbols,
			TotalRank: total,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalRank != summaries[j].TotalRank {
			return summaries[i].TotalRank > summaries[j].TotalRank
		}
		return summaries[i].FilePath < summaries[j].FilePath
	})

	return summaries
}
