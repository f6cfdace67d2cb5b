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

// FieldTaint tracks taint at field granularity: obj.field1 may be
// tainted while obj.field2 is clean, which a whole-object taint map
// cannot distinguish.
type FieldTaint struct {
	// object -> field -> taint source names
	fields map[string]map[string]map[string]bool
}

// NewFieldTaint creates an empty field-sensitive taint map.
func NewFieldTaint() *FieldTaint {
	return &FieldTaint{fields: make(map[string]map[string]map[string]bool)}
}

// TaintField marks obj.field as tainted by source.
func (f *FieldTaint) TaintField(obj, field, source string) {
	byField, ok := f.fields[obj]
	if !ok {
		byField = make(map[string]map[string]bool)
		f.fields[obj] = byField
	}
	sources, ok := byField[field]
	if !ok {
		sources = make(map[string]bool)
		byField[field] = sources
	}
	sources[source] = true
}

// IsFieldTainted reports whether obj.field carries any taint.
func (f *FieldTaint) IsFieldTainted(obj, field string) bool {
	byField, ok := f.fields[obj]
	if !ok {
		return false
	}
	return len(byField[field]) > 0
}

// FieldSources returns the taint source names recorded for obj.field.
func (f *FieldTaint) FieldSources(obj, field string) map[string]bool {
	out := make(map[string]bool)
	if byField, ok := f.fields[obj]; ok {
		for s := range byField[field] {
			out[s] = true
		}
	}
	return out
}

// Merge folds other's field taints into f, as a join at a control-flow
// merge point.
func (f *FieldTaint) Merge(other *FieldTaint) {
	for obj, byField := range other.fields {
		for field, sources := range byField {
			for source := range sources {
				f.TaintField(obj, field, source)
			}
		}
	}
}

// ObjectCount returns the number of distinct objects with any tracked
// field taint.
func (f *FieldTaint) ObjectCount() int { return len(f.fields) }
