// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vocab holds the DocFreq vocabulary: an ordered token list plus
// per-token document counts produced once during corpus ingestion and
// consumed read-only by the sketcher thereafter.
package vocab

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/afcarl/gemini/internal/gemerr"
)

// DocFreq is the document-frequency vocabulary: an ordered token list plus
// per-token document counts. It is immutable after Load: every exported
// method is safe for concurrent use.
type DocFreq struct {
	docs   int
	tokens []string
	df     map[string]int
	index  map[string]int // token -> position in tokens
}

type wireDocFreq struct {
	Docs   int            `json:"docs"`
	Tokens []string       `json:"tokens"`
	DF     map[string]int `json:"df"`
}

// Load parses the canonical JSON shape {docs, tokens, df} and validates its
// invariants: every token in tokens is a key of df and vice versa, and
// 1 <= df[t] <= docs for all t.
func Load(data []byte) (*DocFreq, error) {
	var w wireDocFreq
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(gemerr.ErrMalformedVocabulary, err.Error())
	}
	return fromWire(w)
}

func fromWire(w wireDocFreq) (*DocFreq, error) {
	if len(w.Tokens) != len(w.DF) {
		return nil, errors.Wrapf(gemerr.ErrMalformedVocabulary,
			"tokens has %d entries but df has %d", len(w.Tokens), len(w.DF))
	}

	index := make(map[string]int, len(w.Tokens))
	for i, t := range w.Tokens {
		if _, dup := index[t]; dup {
			return nil, errors.Wrapf(gemerr.ErrMalformedVocabulary, "duplicate token %q", t)
		}
		index[t] = i

		count, ok := w.DF[t]
		if !ok {
			return nil, errors.Wrapf(gemerr.ErrMalformedVocabulary, "token %q missing from df", t)
		}
		if count < 1 || count > w.Docs {
			return nil, errors.Wrapf(gemerr.ErrMalformedVocabulary,
				"df[%q]=%d out of range [1, %d]", t, count, w.Docs)
		}
	}
	for t := range w.DF {
		if _, ok := index[t]; !ok {
			return nil, errors.Wrapf(gemerr.ErrMalformedVocabulary, "df token %q missing from tokens", t)
		}
	}

	return &DocFreq{
		docs:   w.Docs,
		tokens: append([]string(nil), w.Tokens...),
		df:     w.DF,
		index:  index,
	}, nil
}

// New builds a DocFreq directly from counts, sorting tokens deterministically
// (lexicographically) the way a corpus-ingestion pass would before
// persisting it. Used by the corpus-ingestion tooling (out of scope here)
// and by tests that need a vocabulary without a JSON fixture.
func New(docs int, df map[string]int) (*DocFreq, error) {
	tokens := make([]string, 0, len(df))
	for t := range df {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return fromWire(wireDocFreq{Docs: docs, Tokens: tokens, DF: df})
}

// Docs returns the corpus document count.
func (d *DocFreq) Docs() int { return d.docs }

// Len returns the vocabulary size (|tokens| == |df|).
func (d *DocFreq) Len() int { return len(d.tokens) }

// Token returns the token at position i.
func (d *DocFreq) Token(i int) string { return d.tokens[i] }

// TokenIndex looks up the vocabulary position of t. The second return value
// is false if t is absent from the vocabulary.
func (d *DocFreq) TokenIndex(t string) (int, bool) {
	i, ok := d.index[t]
	return i, ok
}

// Weight returns log(docs / df[t]), the inverse-document-frequency scale
// used to weight features. It panics if t is not in the vocabulary; callers
// must check TokenIndex first, exactly as package feature does.
func (d *DocFreq) Weight(t string) float64 {
	count, ok := d.df[t]
	if !ok {
		panic("vocab: Weight called with unknown token " + t)
	}
	return math.Log(float64(d.docs) / float64(count))
}

// Dump re-serializes the vocabulary to the canonical JSON shape with sorted
// map keys, so Load(Dump(d)) round-trips to canonically equal JSON as
// required by this package's round-trip property.
func (d *DocFreq) Dump() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wireDocFreq{
		Docs:   d.docs,
		Tokens: d.tokens,
		DF:     d.df,
	}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
