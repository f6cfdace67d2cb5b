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

package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/kraklabs/codegraph/pkg/model"
)

// exprHashKey is a fixed key, distinct from model's, so the two hash
// spaces (node IDs vs. expression hashes) never collide by construction.
var exprHashKey = [32]byte{
	0x45, 0x78, 0x70, 0x72, 0x65, 0x73, 0x73, 0x69,
	0x6f, 0x6e, 0x48, 0x61, 0x73, 0x68, 0x4b, 0x65,
	0x79, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
}

// ExprKind is the closed set of literal/compound shapes an Expression may
// hold (§4.5 "canonicalizable Expression trees").
type ExprKind string

const (
	ExprString ExprKind = "string"
	ExprNumber ExprKind = "number"
	ExprBool   ExprKind = "bool"
	ExprNull   ExprKind = "null"
	ExprList   ExprKind = "list"
	ExprObject ExprKind = "object"
)

// Expression is a literal value tree used as the leaves and combinators of
// a Selector filter (§4.5). NaN is rejected at construction (ErrNaNInLiteral,
// §7): a query literal that can never compare equal to itself is almost
// always an upstream bug, not a valid filter value.
type Expression struct {
	Kind   ExprKind
	Str    string
	Num    float64
	Bool   bool
	List   []Expression
	Object map[string]Expression
}

// NewNumber constructs a numeric literal, rejecting NaN per invariant in §7.
func NewNumber(v float64) (Expression, error) {
	if math.IsNaN(v) {
		return Expression{}, &model.AnalysisError{Kind: model.ErrNaNInLiteral, Message: "NaN is not a valid query literal"}
	}
	return Expression{Kind: ExprNumber, Num: v}, nil
}

func NewString(v string) Expression { return Expression{Kind: ExprString, Str: v} }
func NewBool(v bool) Expression     { return Expression{Kind: ExprBool, Bool: v} }
func NewNull() Expression           { return Expression{Kind: ExprNull} }
func NewList(items ...Expression) Expression { return Expression{Kind: ExprList, List: items} }
func NewObject(fields map[string]Expression) Expression {
	return Expression{Kind: ExprObject, Object: fields}
}

// Canonicalize returns a deterministic string form: object keys sorted,
// so two Expressions built from a map in different iteration orders
// canonicalize identically. This is the input to StableHash.
func (e Expression) Canonicalize() string {
	var b strings.Builder
	e.writeCanonical(&b)
	return b.String()
}

func (e Expression) writeCanonical(b *strings.Builder) {
	switch e.Kind {
	case ExprString:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(e.Str, `"`, `\"`))
		b.WriteByte('"')
	case ExprNumber:
		b.WriteString(strconv.FormatFloat(e.Num, 'g', -1, 64))
	case ExprBool:
		b.WriteString(strconv.FormatBool(e.Bool))
	case ExprNull:
		b.WriteString("null")
	case ExprList:
		b.WriteByte('[')
		for i, item := range e.List {
			if i > 0 {
				b.WriteByte(',')
			}
			item.writeCanonical(b)
		}
		b.WriteByte(']')
	case ExprObject:
		keys := make([]string, 0, len(e.Object))
		for k := range e.Object {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%q:", k)
			e.Object[k].writeCanonical(b)
		}
		b.WriteByte('}')
	}
}

// StableHash returns a deterministic hex digest of the canonical form,
// used to dedupe equivalent query plans and as a cache key for repeated
// selector evaluation (§4.5).
func (e Expression) StableHash() string {
	h, err := highwayhash.New(exprHashKey[:])
	if err != nil {
		panic("query: bad highwayhash key length: " + err.Error())
	}
	h.Write([]byte(e.Canonicalize()))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Equal reports whether two expressions canonicalize identically.
func (e Expression) Equal(other Expression) bool {
	return e.Canonicalize() == other.Canonicalize()
}
