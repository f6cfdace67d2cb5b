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

package model

import "fmt"

// ErrorKind is the single closed error taxonomy shared across the core
// (§7). internal/errors wraps these into CLI-facing UserErrors.
type ErrorKind string

const (
	ErrStorage         ErrorKind = "StorageError"
	ErrInvalidFunction ErrorKind = "InvalidFunctionId"
	ErrInvalidInput    ErrorKind = "InvalidInput"
	ErrConfig          ErrorKind = "ConfigError"
	ErrParse           ErrorKind = "ParseError"
	ErrNaNInLiteral    ErrorKind = "NaNInLiteral"
	ErrIndex           ErrorKind = "IndexError"
	ErrMemory          ErrorKind = "MemoryError"
	ErrConcurrency     ErrorKind = "ConcurrencyError"
)

// MemorySubKind distinguishes the abstract-memory violations folded under
// ErrMemory (§7, §4.3.7).
type MemorySubKind string

const (
	MemNullDeref        MemorySubKind = "NullDereference"
	MemUseAfterFree     MemorySubKind = "UseAfterFree"
	MemDoubleFree       MemorySubKind = "DoubleFree"
	MemBufferOverflow   MemorySubKind = "BufferOverflow"
	MemSpatialViolation MemorySubKind = "SpatialViolation"
	MemInvalidPointer   MemorySubKind = "InvalidPointer"
)

// ConcurrencySubKind distinguishes concurrency errors.
type ConcurrencySubKind string

const (
	ConcFunctionNotFound ConcurrencySubKind = "FunctionNotFound"
	ConcSessionConflict  ConcurrencySubKind = "SessionConflict"
)

// AnalysisError is the error type for failures in the ErrorKind
// taxonomy. Not every package returns it: pkg/config and
// pkg/orchestrator, for example, return plain errors. It carries a
// closed Kind plus optional sub-kind detail for MemoryError/
// ConcurrencyError, and an optional wrapped cause.
type AnalysisError struct {
	Kind       ErrorKind
	MemKind    MemorySubKind
	ConcKind   ConcurrencySubKind
	Message    string
	Location   string // e.g. an alloc site, a function FQN, a file:line
	Err        error
}

func (e *AnalysisError) Error() string {
	detail := string(e.Kind)
	if e.MemKind != "" {
		detail = string(e.MemKind)
	}
	if e.ConcKind != "" {
		detail = string(e.ConcKind)
	}
	if e.Location != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (%s): %v", detail, e.Message, e.Location, e.Err)
		}
		return fmt.Sprintf("%s: %s (%s)", detail, e.Message, e.Location)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", detail, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", detail, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NewStorageError wraps a backend I/O or constraint failure.
func NewStorageError(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrStorage, Message: message, Err: err}
}

// NewConfigError reports a preset violation, missing dependency, or
// out-of-range numeric config value, raised before the first stage runs.
func NewConfigError(message string) *AnalysisError {
	return &AnalysisError{Kind: ErrConfig, Message: message}
}

// NewParseError reports a source that failed to parse. The pipeline
// attaches this to the File node and continues with a partial IR.
func NewParseError(filePath string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrParse, Message: "failed to parse", Location: filePath, Err: err}
}

// NewIndexError reports a plugin apply/rebuild/query failure.
func NewIndexError(pluginName string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrIndex, Message: "index plugin failure", Location: pluginName, Err: err}
}

// NewMemoryError reports an abstract-memory violation. It never panics;
// callers record it as a diagnostic and continue the analysis.
func NewMemoryError(sub MemorySubKind, location string) *AnalysisError {
	return &AnalysisError{Kind: ErrMemory, MemKind: sub, Message: "abstract memory violation", Location: location}
}

// NewConcurrencyError reports an unknown-function lookup or a commit
// conflict from the orchestrator's session model.
func NewConcurrencyError(sub ConcurrencySubKind, location string) *AnalysisError {
	return &AnalysisError{Kind: ErrConcurrency, ConcKind: sub, Message: "concurrency error", Location: location}
}

// IsKind reports whether err is an *AnalysisError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ae, ok := err.(*AnalysisError)
	return ok && ae.Kind == kind
}
