package lookup

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/sourcegraph/log/logtest"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/feature"
	"github.com/afcarl/gemini/featuresvc"
	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/vocab"
	"github.com/afcarl/gemini/wmh"
)

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

func testVocab(t *testing.T) *vocab.DocFreq {
	t.Helper()
	d, err := vocab.New(10, map[string]int{"foo": 2, "bar": 2, "baz": 2})
	require.NoError(t, err)
	return d
}

func TestRunFindsOwnDuplicateAfterIndexing(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()
	voc := testVocab(t)
	params := wmh.GenerateParams(wmh.DefaultSeed, wmh.FileMode.SampleSize(), voc.Len())

	content := []byte("package demo\nfunc Foo() {}\n")
	contentSha := sha1Hex(content)

	bag := feature.Build(voc, []feature.Feature{{Token: "foo", RawWeight: 3}, {Token: "bar", RawWeight: 1}})
	sketch := wmh.Hash(params, bag)
	bands := wmh.Bands(sketch, wmh.FileMode.HTNum(), wmh.FileMode.BandSize())
	require.NoError(t, store.UpsertBands(ctx, idx, contentSha, bands, wmh.FileMode))
	require.NoError(t, idx.PutMeta(ctx, store.RepoFile{Repo: "r", Commit: "c", Path: "demo.go", Sha: contentSha}))

	engine := &Engine{
		AST:      &astsvc.MockClient{Results: map[string]astsvc.ParseResult{"demo.go": {Root: &astsvc.Node{ID: "root", Type: "File"}}}},
		Features: &featuresvc.MockClient{Features: []feature.Feature{{Token: "foo", RawWeight: 3}, {Token: "bar", RawWeight: 1}}},
		Index:    idx,
		Vocab:    voc,
		Params:   params,
		Logger:   logtest.NoOp(t),
	}

	result, err := engine.Run(ctx, Input{Filename: "demo.go", Content: content, Mode: wmh.FileMode})
	require.NoError(t, err)
	require.Len(t, result.Duplicates, 1)
	require.Equal(t, "demo.go", result.Duplicates[0].Path)
	require.Empty(t, result.Similar, "own sha should be excluded from similar via duplicate-set filtering")
}

func TestRunSkipsOnMissingUAST(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()
	voc := testVocab(t)
	params := wmh.GenerateParams(wmh.DefaultSeed, wmh.FileMode.SampleSize(), voc.Len())

	engine := &Engine{
		AST:      &astsvc.MockClient{Results: map[string]astsvc.ParseResult{"broken.go": {Root: nil, Errors: []string{"parse error"}}}},
		Features: &featuresvc.MockClient{},
		Index:    idx,
		Vocab:    voc,
		Params:   params,
		Logger:   logtest.NoOp(t),
	}

	result, err := engine.Run(ctx, Input{Filename: "broken.go", Content: []byte("???"), Mode: wmh.FileMode})
	require.NoError(t, err)
	require.Empty(t, result.Duplicates)
	require.Empty(t, result.Similar)
}

func TestFilterNarrowsFunctionsByNameAndLine(t *testing.T) {
	root := &astsvc.Node{
		ID:   "root",
		Type: "File",
		Children: []*astsvc.Node{
			{ID: "fn1", Type: "FunctionDecl", Token: "parse", StartLine: 42},
			{ID: "fn2", Type: "FunctionDecl", Token: "other", StartLine: 10},
		},
	}

	fns := WalkFunctions(root)
	require.Len(t, fns, 2)

	filtered := Filter{Name: "parse", StartLine: 42}.Apply(fns)
	require.Len(t, filtered, 1)
	require.Equal(t, "parse", filtered[0].Name)
}

func TestWalkFunctionsExcludesNestedFunctions(t *testing.T) {
	root := &astsvc.Node{
		ID:   "root",
		Type: "File",
		Children: []*astsvc.Node{
			{
				ID: "outer", Type: "FunctionDecl", Token: "outer", StartLine: 1,
				Children: []*astsvc.Node{
					{ID: "inner", Type: "FunctionDecl", Token: "inner", StartLine: 2},
				},
			},
		},
	}

	fns := WalkFunctions(root)
	require.Len(t, fns, 1)
	require.Equal(t, "outer", fns[0].Name)
}

func TestFuncKeyIsOpaqueComposite(t *testing.T) {
	require.Equal(t, "a/b.go@deadbeef", FuncKey("a/b.go", "deadbeef"))
}
