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

import "fmt"

// CloneMetrics is the similarity/quality metric bundle for a ClonePair.
type CloneMetrics struct {
	TokenSimilarity         float64
	LineSimilarity          float64
	ASTSimilarity           *float64
	SemanticSimilarity      *float64
	EditDistance            *int
	NormalizedEditDistance  *float64
	CloneLengthTokens       int
	CloneLengthLOC          int
	GapCount                *int
	GapSize                 *int
}

// NewCloneMetrics builds a metrics bundle from the basics; the optional
// fields are filled in via the With* builders.
func NewCloneMetrics(tokens, loc int, similarity float64) CloneMetrics {
	return CloneMetrics{
		TokenSimilarity:   similarity,
		LineSimilarity:    similarity,
		CloneLengthTokens: tokens,
		CloneLengthLOC:    loc,
	}
}

func (m CloneMetrics) WithASTSimilarity(similarity float64) CloneMetrics {
	m.ASTSimilarity = &similarity
	return m
}

func (m CloneMetrics) WithSemanticSimilarity(similarity float64) CloneMetrics {
	m.SemanticSimilarity = &similarity
	return m
}

// WithEditDistance records a raw Levenshtein distance and, when maxLength
// is positive, its normalization to [0,1] (1 - distance/maxLength).
func (m CloneMetrics) WithEditDistance(distance, maxLength int) CloneMetrics {
	m.EditDistance = &distance
	if maxLength > 0 {
		norm := 1.0 - float64(distance)/float64(maxLength)
		m.NormalizedEditDistance = &norm
	}
	return m
}

func (m CloneMetrics) WithGaps(gapCount, gapSize int) CloneMetrics {
	m.GapCount = &gapCount
	m.GapSize = &gapSize
	return m
}

// DetectionInfo is the provenance/confidence metadata attached to a
// ClonePair.
type DetectionInfo struct {
	Algorithm        string
	DetectionTimeMs  *uint64
	DetectorVersion  string
	Confidence       *float64
	IsTruePositive   *bool
	Notes            []string
}

// NewDetectionInfo builds detection metadata for the given algorithm name.
func NewDetectionInfo(algorithm string) DetectionInfo {
	return DetectionInfo{Algorithm: algorithm, DetectorVersion: "1.0.0"}
}

func (d DetectionInfo) WithTime(ms uint64) DetectionInfo {
	d.DetectionTimeMs = &ms
	return d
}

func (d DetectionInfo) WithConfidence(confidence float64) DetectionInfo {
	c := clamp01(confidence)
	d.Confidence = &c
	return d
}

func (d DetectionInfo) WithGroundTruth(isTruePositive bool) DetectionInfo {
	d.IsTruePositive = &isTruePositive
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClonePair is a pair of fragments identified as clones of each other
// (§4.3.9).
type ClonePair struct {
	CloneType     CloneType
	Source        Fragment
	Target        Fragment
	Similarity    float64
	Metrics       CloneMetrics
	DetectionInfo DetectionInfo
}

// NewClonePair builds a ClonePair with default metrics/detection info
// derived from the fragments and clone type.
func NewClonePair(cloneType CloneType, source, target Fragment, similarity float64) ClonePair {
	tokens := min(source.TokenCount, target.TokenCount)
	loc := min(source.LOC, target.LOC)
	return ClonePair{
		CloneType:     cloneType,
		Source:        source,
		Target:        target,
		Similarity:    similarity,
		Metrics:       NewCloneMetrics(tokens, loc, similarity),
		DetectionInfo: NewDetectionInfo(cloneType.Algorithm()),
	}
}

func (p ClonePair) WithMetrics(metrics CloneMetrics) ClonePair {
	p.Metrics = metrics
	return p
}

func (p ClonePair) WithDetectionInfo(info DetectionInfo) ClonePair {
	p.DetectionInfo = info
	return p
}

func (p ClonePair) AddNote(note string) ClonePair {
	p.DetectionInfo.Notes = append(p.DetectionInfo.Notes, note)
	return p
}

func (p ClonePair) WithConfidence(confidence float64) ClonePair {
	p.DetectionInfo = p.DetectionInfo.WithConfidence(confidence)
	return p
}

// IsValid reports whether both fragments meet the clone type's size
// thresholds and the pair's similarity meets its threshold (§4.3.9).
func (p ClonePair) IsValid() bool {
	minTokens := p.CloneType.MinTokenThreshold()
	minLOC := p.CloneType.MinLOCThreshold()
	minSimilarity := p.CloneType.SimilarityThreshold()

	return p.Source.MeetsThreshold(minTokens, minLOC) &&
		p.Target.MeetsThreshold(minTokens, minLOC) &&
		p.Similarity >= minSimilarity
}

func (p ClonePair) IsSameFile() bool { return p.Source.FilePath == p.Target.FilePath }

func (p ClonePair) HasOverlap() bool { return p.Source.Overlaps(p.Target) }

func (p ClonePair) OverlapRatio() float64 { return p.Source.OverlapRatio(p.Target) }

// DistanceLines is the line gap between the two fragments, nil if they're
// in different files. Overlapping fragments report 0.
func (p ClonePair) DistanceLines() *int {
	if !p.IsSameFile() {
		return nil
	}
	s1, e1 := p.Source.LineRange()
	s2, e2 := p.Target.LineRange()

	var d int
	switch {
	case e1 < s2:
		d = s2 - e1
	case e2 < s1:
		d = s1 - e2
	default:
		d = 0
	}
	return &d
}

// IsSelfClone reports whether source and target are literally the same
// fragment.
func (p ClonePair) IsSelfClone() bool {
	return p.IsSameFile() && p.Source.Span == p.Target.Span && p.Source.Content == p.Target.Content
}

// ID is a unique identifier for this ordered pair.
func (p ClonePair) ID() string {
	return fmt.Sprintf("%s:%d:%d-%s:%d:%d",
		p.Source.FilePath, p.Source.Span.StartLine, p.Source.Span.EndLine,
		p.Target.FilePath, p.Target.Span.StartLine, p.Target.Span.EndLine)
}

// NormalizedID is ID with the smaller fragment first, so the same pair
// discovered in either order dedupes to one key.
func (p ClonePair) NormalizedID() string {
	sourceKey := fragmentKey(p.Source)
	targetKey := fragmentKey(p.Target)
	if sourceKey <= targetKey {
		return p.ID()
	}
	return fmt.Sprintf("%s:%d:%d-%s:%d:%d",
		p.Target.FilePath, p.Target.Span.StartLine, p.Target.Span.EndLine,
		p.Source.FilePath, p.Source.Span.StartLine, p.Source.Span.EndLine)
}

func fragmentKey(f Fragment) string {
	return fmt.Sprintf("%s:%010d:%010d", f.FilePath, f.Span.StartLine, f.Span.EndLine)
}

// QualityScore combines similarity, a length factor (longer clones are
// more significant), and detection confidence (§4.3.9).
func (p ClonePair) QualityScore() float64 {
	confidence := 1.0
	if p.DetectionInfo.Confidence != nil {
		confidence = *p.DetectionInfo.Confidence
	}
	return p.Similarity * p.lengthFactor() * confidence
}

const (
	minLengthTokens = 50.0
	maxLengthTokens = 500.0
)

func (p ClonePair) lengthFactor() float64 {
	tokens := float64(p.Metrics.CloneLengthTokens)
	return clamp01((tokens - minLengthTokens) / (maxLengthTokens - minLengthTokens))
}

// IsSubsetOf reports whether this pair is fully contained within other,
// in either orientation — used to suppress redundant sub-clones once a
// containing clone is already reported.
func (p ClonePair) IsSubsetOf(other ClonePair) bool {
	return (p.Source.IsContainedIn(other.Source) && p.Target.IsContainedIn(other.Target)) ||
		(p.Source.IsContainedIn(other.Target) && p.Target.IsContainedIn(other.Source))
}

// SimilarityWith computes a clustering similarity between two clone
// pairs, as the average of each pair's best cross-fragment overlap.
func (p ClonePair) SimilarityWith(other ClonePair) float64 {
	sourceOverlap := max(p.Source.OverlapRatio(other.Source), p.Source.OverlapRatio(other.Target))
	targetOverlap := max(p.Target.OverlapRatio(other.Source), p.Target.OverlapRatio(other.Target))
	return (sourceOverlap + targetOverlap) / 2.0
}

func (p ClonePair) String() string {
	return fmt.Sprintf("ClonePair(%s, %.1f%% similar, %s <-> %s)",
		p.CloneType, p.Similarity*100.0, p.Source.LocationString(), p.Target.LocationString())
}
