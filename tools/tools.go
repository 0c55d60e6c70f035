// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package tools

// Tool is one entry of an assistant's tool list. Exactly one of its fields is
// set; the zero value is not a valid tool.
type Tool struct {
	SearchIndex *SearchIndexTool `json:"searchIndex,omitempty"`
}

// SearchIndexTool instructs an assistant to retrieve context from search
// indexes before answering. It references indexes by ID; the indexes
// themselves are managed by the searchindexes service.
type SearchIndexTool struct {
	SearchIndexIDs []string `json:"searchIndexIds"`

	// MaxNumResults caps how many search results feed the prompt. Fewer may
	// be used when the prompt's token limit requires it; zero keeps the
	// server default.
	MaxNumResults int64 `json:"maxNumResults,string,omitempty"`
}

// SearchIndexOption configures a search-index tool.
type SearchIndexOption func(*SearchIndexTool)

// WithMaxNumResults caps the number of search results retrieved per query.
func WithMaxNumResults(n int64) SearchIndexOption {
	return func(t *SearchIndexTool) {
		t.MaxNumResults = n
	}
}

// SearchIndex declares a retrieval tool over the given search indexes.
func SearchIndex(indexIDs []string, opts ...SearchIndexOption) Tool {
	t := &SearchIndexTool{SearchIndexIDs: indexIDs}
	for _, opt := range opts {
		opt(t)
	}
	return Tool{SearchIndex: t}
}
