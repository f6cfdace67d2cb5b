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

package clone

import (
	"fmt"
	"regexp"

	"github.com/kraklabs/codegraph/pkg/model"
)

// tokenPattern splits source text into identifier/number/operator tokens.
// It is a heuristic lexer, not a language-aware one: clone detection only
// needs token multisets, not a real grammar.
var tokenPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|[0-9]+(?:\.[0-9]+)?|[^\sA-Za-z0-9_]`)

// Fragment is a code fragment considered as a clone candidate: a span of
// source in one file, with its token/line counts precomputed.
type Fragment struct {
	FilePath   string
	Span       model.Span
	Content    string
	TokenCount int
	LOC        int
}

// NewFragment builds a Fragment, tokenizing content to derive TokenCount.
func NewFragment(filePath string, span model.Span, content string) Fragment {
	return Fragment{
		FilePath:   filePath,
		Span:       span,
		Content:    content,
		TokenCount: len(Tokenize(content)),
		LOC:        span.LineCount(),
	}
}

// FromChunk adapts a persisted model.Chunk into a Fragment.
func FromChunk(c model.Chunk) Fragment {
	return NewFragment(c.FilePath, model.Span{StartLine: c.StartLine, EndLine: c.EndLine}, c.Content)
}

// Tokenize splits source text into a flat token list.
func Tokenize(content string) []string {
	return tokenPattern.FindAllString(content, -1)
}

// MeetsThreshold reports whether the fragment is large enough to be
// considered for a given clone type.
func (f Fragment) MeetsThreshold(minTokens, minLOC int) bool {
	return f.TokenCount >= minTokens && f.LOC >= minLOC
}

// LineRange returns the fragment's inclusive (start, end) line numbers.
func (f Fragment) LineRange() (int, int) { return f.Span.StartLine, f.Span.EndLine }

// Overlaps reports whether f and other occupy overlapping source ranges
// in the same file.
func (f Fragment) Overlaps(other Fragment) bool {
	return f.FilePath == other.FilePath && model.Overlaps(f.Span, other.Span)
}

// OverlapRatio is the fraction of f's line range also covered by other,
// 0 if they're in different files or don't overlap.
func (f Fragment) OverlapRatio(other Fragment) float64 {
	if f.FilePath != other.FilePath {
		return 0
	}
	s1, e1 := f.LineRange()
	s2, e2 := other.LineRange()
	start := max(s1, s2)
	end := min(e1, e2)
	if end < start {
		return 0
	}
	overlapLines := float64(end - start + 1)
	fLines := float64(e1 - s1 + 1)
	if fLines == 0 {
		return 0
	}
	return overlapLines / fLines
}

// IsContainedIn reports whether f's span is fully enclosed by other's, in
// the same file.
func (f Fragment) IsContainedIn(other Fragment) bool {
	return f.FilePath == other.FilePath && model.Contains(other.Span, f.Span)
}

// LocationString renders "path:startLine" for display.
func (f Fragment) LocationString() string {
	return fmt.Sprintf("%s:%d", f.FilePath, f.Span.StartLine)
}
