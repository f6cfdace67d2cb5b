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

package orchestrator

// QueryType is the closed set of query shapes the orchestrator routes.
type QueryType string

const (
	QuerySemanticSearch     QueryType = "semantic_search"
	QuerySimilarCode        QueryType = "similar_code"
	QueryIdentifierLookup   QueryType = "identifier_lookup"
	QueryIRDocLookup        QueryType = "ir_doc_lookup"
	QueryHybridSearch       QueryType = "hybrid_search"
	QueryTextSearch         QueryType = "text_search"
	QueryFQNSearch          QueryType = "fqn_search"
	QueryReachability       QueryType = "reachability"
	QueryASTLookup          QueryType = "ast_lookup"
	QueryMetricsLookup      QueryType = "metrics_lookup"
	QueryComplexityAnalysis QueryType = "complexity_analysis"
)

// primaryIndex is the closed QueryType -> IndexType routing table
// (§4.6 "Query routing"). HybridSearch has no single primary index: it
// fans out to several and fuses (see RouteHybrid).
var primaryIndex = map[QueryType]IndexType{
	QuerySemanticSearch:     IndexVector,
	QuerySimilarCode:        IndexVector,
	QueryIdentifierLookup:   IndexVector,
	QueryIRDocLookup:        IndexVector,
	QueryTextSearch:         IndexLexical,
	QueryFQNSearch:          IndexLexical,
	QueryReachability:       IndexGraph,
	QueryASTLookup:          IndexGraph,
	QueryMetricsLookup:      IndexGraph,
	QueryComplexityAnalysis: IndexGraph,
}

// hybridIndices are the indices a HybridSearch query consults before
// fusion; vector leads per the routing table, lexical and graph
// contribute secondary signal.
var hybridIndices = []IndexType{IndexVector, IndexLexical, IndexGraph}

// Route returns the primary index type for qt. The bool is false for
// QueryHybridSearch, which has no single primary index — callers should
// use RouteHybrid instead.
func Route(qt QueryType) (IndexType, bool) {
	if qt == QueryHybridSearch {
		return "", false
	}
	idx, ok := primaryIndex[qt]
	return idx, ok
}

// RouteHybrid returns every index type a hybrid query consults.
func RouteHybrid() []IndexType {
	out := make([]IndexType, len(hybridIndices))
	copy(out, hybridIndices)
	return out
}
