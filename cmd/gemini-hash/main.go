// Command gemini-hash computes the weighted-MinHash sketch of each file
// given on the command line (or, in function mode, of every top-level
// function in it), bands it, and writes the resulting rows to the
// hashtable index.
package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	sglog "github.com/sourcegraph/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/feature"
	"github.com/afcarl/gemini/featuresvc"
	"github.com/afcarl/gemini/internal/config"
	"github.com/afcarl/gemini/internal/gemerr"
	"github.com/afcarl/gemini/internal/harness"
	"github.com/afcarl/gemini/internal/metrics"
	"github.com/afcarl/gemini/internal/tracer"
	"github.com/afcarl/gemini/lookup"
	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/vocab"
	"github.com/afcarl/gemini/wmh"
)

// parallelism bounds the number of files hashed concurrently by one
// gemini-hash invocation, the same "map" side of this package's map/collect
// harness every row computation is required to be safe under.
const parallelism = 8

const version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gemini-hash", flag.ContinueOnError)
	var cfg config.Backend
	cfg.Register(fs)

	var (
		astAddr      = fs.String("ast-addr", "127.0.0.1:9091", "AST extraction service address")
		featuresAddr = fs.String("features-addr", "127.0.0.1:9092", "feature extraction service address")
		vocabPath    = fs.String("vocab", "", "path to the DocFreq vocabulary JSON")
		repo         = fs.String("repo", "", "repository name to record as provenance")
		commit       = fs.String("commit", "", "commit SHA to record as provenance")
	)

	if err := config.ParseWithEnv(fs, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: gemini-hash [flags] <file> [file...]")
		return 2
	}
	files := fs.Args()

	liblog := sglog.Init(sglog.Resource{Name: "gemini-hash", Version: version})
	defer liblog.Sync()
	logger := sglog.Scoped("hash", "")
	_ = tracer.Init("gemini-hash", version)
	_, _ = maxprocs.Set()

	mode, err := cfg.WMHMode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *vocabPath == "" {
		fmt.Fprintln(os.Stderr, "-vocab is required")
		return 2
	}
	vocabBytes, err := os.ReadFile(*vocabPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	voc, err := vocab.Load(vocabBytes)
	if err != nil {
		logger.Error("malformed vocabulary", sglog.Error(err))
		return gemerr.ExitCode(err)
	}

	ast, err := astsvc.DialGRPC(*astAddr, 30*time.Second)
	if err != nil {
		logger.Error("dialing AST service", sglog.Error(err))
		return gemerr.ExitCode(err)
	}
	defer ast.Close()

	feats, err := featuresvc.DialGRPC(*featuresAddr, 30*time.Second)
	if err != nil {
		logger.Error("dialing feature extraction service", sglog.Error(err))
		return gemerr.ExitCode(err)
	}
	defer feats.Close()

	rawIdx, err := store.NewCQLIndex(cfg.StoreConfig())
	if err != nil {
		logger.Error("dialing backend", sglog.Error(err))
		return gemerr.ExitCode(err)
	}
	defer rawIdx.Close()
	idx := store.NewBatchDeduper(rawIdx)

	params := wmh.GenerateParams(wmh.DefaultSeed, mode.SampleSize(), voc.Len())
	counters := gemerr.NewCounters()

	rows := make([]harness.Row[struct{}], len(files))
	for i, file := range files {
		file := file
		rows[i] = func(ctx context.Context) (struct{}, error) {
			start := time.Now()
			content, err := os.ReadFile(file)
			if err == nil {
				err = hashFile(ctx, mode, voc, params, ast, feats, idx, *repo, *commit, file, content)
			}
			metrics.Hash.Observe(time.Since(start), err, mode.Name())
			if err == nil {
				return struct{}{}, nil
			}
			if errors.Is(err, gemerr.ErrBackendUnavailable) {
				return struct{}{}, err
			}
			kind := gemerr.KindExternalService
			if errors.Is(err, gemerr.ErrMalformedVocabulary) {
				kind = gemerr.KindMalformedVocabulary
			}
			counters.Skip(kind, err.Error())
			if skipErr := idx.PutSkip(ctx, store.SkippedFile{Path: file, Kind: string(kind), Reason: err.Error()}); skipErr != nil {
				logger.Warn("failed to record skipped file", sglog.String("file", file), sglog.Error(skipErr))
			}
			logger.Warn("skipping file", sglog.String("file", file), sglog.Error(err))
			return struct{}{}, nil
		}
	}

	ctx := context.Background()
	if _, err := harness.MapCollect(ctx, parallelism, rows); err != nil {
		logger.Error("hashing aborted", sglog.Error(err))
		return gemerr.ExitCode(err)
	}

	if total := counters.Total(); total > 0 {
		logger.Warn("some files were skipped", sglog.Int("skipped", total))
	}
	return 0
}

func hashFile(ctx context.Context, mode wmh.Mode, voc *vocab.DocFreq, params *wmh.Params, ast astsvc.Client, feats featuresvc.Client, idx store.Index, repo, commit, path string, content []byte) error {
	sum := sha1.Sum(content)
	contentSha := hex.EncodeToString(sum[:])

	parseResult, err := ast.Parse(ctx, path, content)
	if err != nil {
		return err
	}
	if parseResult.Root == nil {
		return errors.Wrapf(gemerr.ErrExternalService, "AST service returned no tree for %s: %v", path, parseResult.Errors)
	}

	if mode.Name() == wmh.FuncMode.Name() {
		for _, fn := range lookup.WalkFunctions(parseResult.Root) {
			funcFeats, err := feats.Extract(ctx, fn.Node, featuresvc.FuncProfile)
			if err != nil {
				return err
			}
			bag := feature.Build(voc, funcFeats)
			if bag.Empty() {
				continue
			}
			funcKey := lookup.FuncKey(path, contentSha)
			if err := hashAndStore(ctx, idx, mode, params, bag, funcKey); err != nil {
				return err
			}
			if err := idx.PutMeta(ctx, store.RepoFile{Repo: repo, Commit: commit, Path: path, Sha: funcKey, Name: fn.Name, Line: fn.StartLine}); err != nil {
				return err
			}
		}
		return nil
	}

	fileFeats, err := feats.Extract(ctx, parseResult.Root, featuresvc.FileProfile)
	if err != nil {
		return err
	}
	bag := feature.Build(voc, fileFeats)
	if bag.Empty() {
		return nil
	}
	if err := hashAndStore(ctx, idx, mode, params, bag, contentSha); err != nil {
		return err
	}
	return idx.PutMeta(ctx, store.RepoFile{Repo: repo, Commit: commit, Path: path, Sha: contentSha})
}

func hashAndStore(ctx context.Context, idx store.Index, mode wmh.Mode, params *wmh.Params, bag *feature.Bag, sha string) error {
	sketch := wmh.Hash(params, bag)
	bands := wmh.Bands(sketch, mode.HTNum(), mode.BandSize())
	return store.UpsertBands(ctx, idx, sha, bands, mode)
}
