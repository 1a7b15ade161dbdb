// Command gemini-report scans the hashtable index and emits the connected
// components ("communities") of near-duplicate content hashes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sglog "github.com/sourcegraph/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/afcarl/gemini/internal/config"
	"github.com/afcarl/gemini/internal/gemerr"
	"github.com/afcarl/gemini/internal/metrics"
	"github.com/afcarl/gemini/internal/tracer"
	"github.com/afcarl/gemini/report"
	"github.com/afcarl/gemini/store"
)

const version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gemini-report", flag.ContinueOnError)
	var cfg config.Backend
	cfg.Register(fs)

	var (
		output   = fs.String("output", "text", "result format: text or json")
		format   = fs.String("format", "", `extraction strategy/render style: "", "condensed", or "use-group-by"`)
		ccOutput = fs.String("cc-output", "", "if set, write one file per community to this directory")
	)

	if err := config.ParseWithEnv(fs, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *output != "text" && *output != "json" {
		fmt.Fprintln(os.Stderr, "-output must be text or json")
		return 2
	}
	if *format != "" && *format != "condensed" && *format != "use-group-by" {
		fmt.Fprintln(os.Stderr, `-format must be "", "condensed", or "use-group-by"`)
		return 2
	}

	liblog := sglog.Init(sglog.Resource{Name: "gemini-report", Version: version})
	defer liblog.Sync()
	logger := sglog.Scoped("report", "")
	_ = tracer.Init("gemini-report", version)
	_, _ = maxprocs.Set()

	mode, err := cfg.WMHMode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	idx, err := store.NewCQLIndex(cfg.StoreConfig())
	if err != nil {
		logger.Error("dialing backend", sglog.Error(err))
		return gemerr.ExitCode(err)
	}
	defer idx.Close()

	ctx := context.Background()
	strategy := "grouped"
	if *format == "use-group-by" {
		strategy = "use-group-by"
	}

	skippedRecords, err := idx.ListSkipped(ctx)
	if err != nil {
		logger.Error("listing skipped files", sglog.Error(err))
		return gemerr.ExitCode(err)
	}
	skipped := make([]string, len(skippedRecords))
	for i, sf := range skippedRecords {
		skipped[i] = sf.Path
	}

	start := time.Now()
	var rep *report.Report
	if strategy == "use-group-by" {
		rep, err = report.BuildCondensed(ctx, idx, mode, skipped)
	} else {
		rep, err = report.BuildGrouped(ctx, idx, mode, skipped)
	}
	metrics.Report.Observe(time.Since(start), err, mode.Name(), strategy)
	if err != nil {
		logger.Error("report scan failed", sglog.Error(err))
		return gemerr.ExitCode(err)
	}

	condensedRender := *format == "condensed"
	if err := writeReport(rep, *output, condensedRender); err != nil {
		logger.Error("writing report", sglog.Error(err))
		return 1
	}

	if *ccOutput != "" {
		if err := writeCommunities(rep, *ccOutput); err != nil {
			logger.Error("writing community files", sglog.Error(err))
			return 1
		}
	}

	return 0
}

func writeReport(rep *report.Report, output string, condensed bool) error {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	for _, c := range rep.Communities {
		if condensed {
			fmt.Println(strings.Join(c.Members, ","))
			continue
		}
		fmt.Printf("community (%d members):\n", len(c.Members))
		for _, m := range c.Members {
			fmt.Printf("  %s\n", m)
		}
	}

	fmt.Printf("skipped_files: %d\n", len(rep.SkippedFiles))
	for _, f := range rep.SkippedFiles {
		fmt.Printf("  %s\n", f)
	}
	return nil
}

func writeCommunities(rep *report.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, c := range rep.Communities {
		name := filepath.Join(dir, "cc_"+strconv.Itoa(i)+".txt")
		content := strings.Join(c.Members, "\n") + "\n"
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
