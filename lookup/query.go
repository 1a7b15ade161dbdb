package lookup

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/opentracing/opentracing-go"
	sglog "github.com/sourcegraph/log"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/feature"
	"github.com/afcarl/gemini/featuresvc"
	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/vocab"
	"github.com/afcarl/gemini/wmh"
)

// Input describes the unit being queried: a file, or (in function mode) a
// file plus an optional function filter.
type Input struct {
	Filename string
	Content  []byte
	Mode     wmh.Mode
	Filter   *Filter // function mode only; nil means "every function"
}

// Result is the {duplicates, similar} pair produced by one query.
type Result struct {
	Duplicates []store.RepoFile
	Similar    []store.RepoFile
}

// Engine wires the four collaborators package lookup needs: the AST
// service, the feature-extraction service, the hashtable index, and the
// WMH vocabulary/parameters for the mode being queried.
type Engine struct {
	AST      astsvc.Client
	Features featuresvc.Client
	Index    store.Index
	Vocab    *vocab.DocFreq
	Params   *wmh.Params
	Logger   sglog.Logger
}

// Run resolves in against the index: exact-duplicate lookup by content
// hash, then feature extraction, sketching, banding, and a band lookup for
// near-duplicates, merging the two result sets.
func (e *Engine) Run(ctx context.Context, in Input) (Result, error) {
	if e.Logger == nil {
		panic("lookup: Engine.Logger must be set by the caller (e.g. sglog.Scoped in main, or logtest.NoOp in tests)")
	}
	logger := e.Logger

	span, ctx := opentracing.StartSpanFromContext(ctx, "lookup.Run")
	defer span.Finish()

	// Step 1: content hash, duplicates lookup.
	sum := sha1.Sum(in.Content)
	contentSha := hex.EncodeToString(sum[:])

	duplicates, err := e.Index.FindByContentHash(ctx, contentSha)
	if err != nil {
		return Result{}, err
	}
	dupSet := make(map[string]bool, len(duplicates))
	for _, d := range duplicates {
		dupSet[d.Sha] = true
	}

	// Step 2: AST.
	parseResult, err := e.AST.Parse(ctx, in.Filename, in.Content)
	if err != nil || (parseResult.Root == nil && len(parseResult.Errors) > 0) {
		if err != nil {
			logger.Warn("ast parse failed, skipping similarity lookup", sglog.String("file", in.Filename), sglog.Error(err))
		} else {
			logger.Warn("ast parse returned no tree", sglog.String("file", in.Filename), sglog.String("errors", strings.Join(parseResult.Errors, "; ")))
		}
		return Result{Duplicates: duplicates, Similar: nil}, nil
	}
	if len(parseResult.Errors) > 0 {
		logger.Warn("ast parse reported errors on a partial tree", sglog.String("file", in.Filename), sglog.String("errors", strings.Join(parseResult.Errors, "; ")))
	}

	// Steps 3-5: per feature batch, bag -> sketch -> bands -> lookup.
	similarSet := make(map[string]bool)
	var batches []featureBatch
	if in.Mode.Name() == wmh.FuncMode.Name() {
		batches, err = e.funcBatches(ctx, parseResult.Root, in.Filter)
	} else {
		batches, err = e.fileBatches(ctx, parseResult.Root)
	}
	if err != nil {
		return Result{}, err
	}

	for _, batch := range batches {
		bagSpan, bctx := opentracing.StartSpanFromContext(ctx, "lookup.bag")
		bag := feature.Build(e.Vocab, batch.features)
		bagSpan.Finish()
		if bag.Empty() {
			continue
		}

		sketchSpan, _ := opentracing.StartSpanFromContext(bctx, "lookup.sketch")
		sketch := wmh.Hash(e.Params, bag)
		sketchSpan.Finish()

		bandsSpan, _ := opentracing.StartSpanFromContext(bctx, "lookup.bands")
		bands := wmh.Bands(sketch, in.Mode.HTNum(), in.Mode.BandSize())
		bandsSpan.Finish()

		lookupSpan, lctx := opentracing.StartSpanFromContext(bctx, "lookup.bands_lookup")
		for h, value := range bands {
			shas, err := e.Index.Lookup(lctx, int32(h), value, in.Mode)
			if err != nil {
				lookupSpan.SetTag("error", true)
				lookupSpan.Finish()
				return Result{}, err
			}
			for _, sha := range shas {
				if dupSet[sha] {
					continue
				}
				similarSet[sha] = true
			}
		}
		lookupSpan.Finish()
	}

	// Step 6: resolve remaining shas through meta.
	similar := make([]store.RepoFile, 0, len(similarSet))
	for sha := range similarSet {
		rfs, err := e.Index.FindByContentHash(ctx, sha)
		if err != nil {
			return Result{}, err
		}
		similar = append(similar, rfs...)
	}
	sort.Slice(similar, func(i, j int) bool {
		if similar[i].Sha != similar[j].Sha {
			return similar[i].Sha < similar[j].Sha
		}
		return similar[i].Path < similar[j].Path
	})

	return Result{Duplicates: duplicates, Similar: similar}, nil
}

type featureBatch struct {
	features []feature.Feature
}

func (e *Engine) fileBatches(ctx context.Context, root *astsvc.Node) ([]featureBatch, error) {
	feats, err := e.Features.Extract(ctx, root, featuresvc.FileProfile)
	if err != nil {
		return nil, err
	}
	return []featureBatch{{features: feats}}, nil
}

func (e *Engine) funcBatches(ctx context.Context, root *astsvc.Node, filter *Filter) ([]featureBatch, error) {
	fns := WalkFunctions(root)
	if filter != nil {
		fns = filter.Apply(fns)
	}

	batches := make([]featureBatch, 0, len(fns))
	for _, fn := range fns {
		feats, err := e.Features.Extract(ctx, fn.Node, featuresvc.FuncProfile)
		if err != nil {
			return nil, err
		}
		batches = append(batches, featureBatch{features: feats})
	}
	return batches, nil
}

// FuncKey renders the opaque "path@content_sha1" composite key used to
// identify a function-mode hashtable entry.
func FuncKey(path, contentSha string) string {
	return fmt.Sprintf("%s@%s", path, contentSha)
}
