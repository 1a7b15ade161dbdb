// Command gemini-query finds exact duplicates and near-duplicates of a
// single file (or, in function mode, one function within it) against an
// already-populated hashtable index.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	sglog "github.com/sourcegraph/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/featuresvc"
	"github.com/afcarl/gemini/internal/config"
	"github.com/afcarl/gemini/internal/gemerr"
	"github.com/afcarl/gemini/internal/metrics"
	"github.com/afcarl/gemini/internal/tracer"
	"github.com/afcarl/gemini/lookup"
	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/vocab"
	"github.com/afcarl/gemini/wmh"
)

const version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gemini-query", flag.ContinueOnError)
	var cfg config.Backend
	cfg.Register(fs)

	var (
		astAddr      = fs.String("ast-addr", "127.0.0.1:9091", "AST extraction service address")
		featuresAddr = fs.String("features-addr", "127.0.0.1:9092", "feature extraction service address")
		vocabPath    = fs.String("vocab", "", "path to the DocFreq vocabulary JSON")
		funcName     = fs.String("name", "", "function-mode only: restrict to this function name")
		funcLine     = fs.Int("line", 0, "function-mode only: restrict to the function starting at this line")
	)

	if err := config.ParseWithEnv(fs, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gemini-query [flags] <file>")
		return 2
	}
	file := fs.Arg(0)

	liblog := sglog.Init(sglog.Resource{Name: "gemini-query", Version: version})
	defer liblog.Sync()
	logger := sglog.Scoped("query", "")
	_ = tracer.Init("gemini-query", version)
	_, _ = maxprocs.Set()

	mode, err := cfg.WMHMode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	content, err := os.ReadFile(file)
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

	idx, err := store.NewCQLIndex(cfg.StoreConfig())
	if err != nil {
		logger.Error("dialing backend", sglog.Error(err))
		return gemerr.ExitCode(err)
	}
	defer idx.Close()

	params := wmh.GenerateParams(wmh.DefaultSeed, mode.SampleSize(), voc.Len())

	engine := &lookup.Engine{
		AST:      ast,
		Features: feats,
		Index:    idx,
		Vocab:    voc,
		Params:   params,
		Logger:   logger,
	}

	in := lookup.Input{Filename: file, Content: content, Mode: mode}
	if mode.Name() == wmh.FuncMode.Name() && (*funcName != "" || *funcLine != 0) {
		in.Filter = &lookup.Filter{Name: *funcName, StartLine: *funcLine}
	}

	ctx := context.Background()
	start := time.Now()
	result, err := engine.Run(ctx, in)
	metrics.Query.Observe(time.Since(start), err, mode.Name())
	if err != nil {
		logger.Error("query failed", sglog.String("file", file), sglog.Error(err))
		return gemerr.ExitCode(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encoding result", sglog.Error(err))
		return 1
	}
	return 0
}
