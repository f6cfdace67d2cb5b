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

package taint

import "strings"

// defaultSanitizerKeywords is matched as a case-insensitive substring
// against function names (§4.3.6).
var defaultSanitizerKeywords = []string{
	"sanitize", "escape", "clean", "validate", "filter", "purify",
	"escape_html", "html_escape", "escapehtml", "encodeforhtml",
	"escape_sql", "prepare_statement", "param_bind", "parameterize",
	"url_encode", "encode_url", "urlencode",
	"normalize_path", "safe_path", "sanitize_path",
	"mark_safe", "esapi",
}

// SanitizerDetector classifies function names as taint sanitizers, by
// built-in keyword or operator-supplied exact match.
type SanitizerDetector struct {
	keywords []string
	custom   map[string]bool
}

// NewSanitizerDetector creates a detector seeded with the built-in
// keyword list and no custom sanitizers.
func NewSanitizerDetector() *SanitizerDetector {
	return &SanitizerDetector{
		keywords: append([]string(nil), defaultSanitizerKeywords...),
		custom:   make(map[string]bool),
	}
}

// AddSanitizer registers an exact-match custom sanitizer function name.
func (d *SanitizerDetector) AddSanitizer(name string) {
	d.custom[name] = true
}

// IsSanitizer reports whether name is a known sanitizer, by exact custom
// match or case-insensitive substring against the keyword list.
func (d *SanitizerDetector) IsSanitizer(name string) bool {
	if d.custom[name] {
		return true
	}
	lower := strings.ToLower(name)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CustomCount returns the number of operator-registered sanitizers.
func (d *SanitizerDetector) CustomCount() int { return len(d.custom) }
