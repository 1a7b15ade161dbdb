package report

import (
	"context"
	"sort"

	"github.com/opentracing/opentracing-go"

	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/wmh"
)

// Community is a connected set of content hashes linked by at least one
// shared (hashtable, value) collision, i.e. one near-duplicate cluster.
type Community struct {
	Members []string // sorted ascending
}

// Report is the full output of a community-detection run: every cluster of
// size >= 2, plus the files the indexing job could not extract features for
// and therefore could not include.
type Report struct {
	Communities  []Community
	SkippedFiles []string
}

// BuildGrouped detects communities with the "grouped" strategy: a single
// ordered scan of hashtables_{mode}, where consecutive rows sharing
// (hashtable, value) form a collision bucket.
func BuildGrouped(ctx context.Context, idx store.Index, mode wmh.Mode, skipped []string) (*Report, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "report.BuildGrouped")
	defer span.Finish()

	uf := newUnionFind()

	it, err := idx.ScanAll(ctx, mode)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	defer it.Close()

	var havePrev bool
	var prevHashtable int32
	var prevValue []byte
	var bucket []string

	flush := func() {
		unionBucket(uf, bucket)
		bucket = bucket[:0]
	}

	for it.Next() {
		row := it.Row()
		if havePrev && row.Hashtable == prevHashtable && bytesEqual(row.Value, prevValue) {
			bucket = append(bucket, row.Sha)
			continue
		}
		if havePrev {
			flush()
		}
		prevHashtable, prevValue = row.Hashtable, row.Value
		bucket = append(bucket[:0], row.Sha)
		havePrev = true
	}
	if err := it.Err(); err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	if havePrev {
		flush()
	}

	return &Report{Communities: finalize(uf), SkippedFiles: skipped}, nil
}

// BuildCondensed detects communities with the "condensed" strategy:
// buckets are asked of the backend directly, rather than
// grouped client-side from a row scan. It must produce the same communities
// as BuildGrouped for identical index contents; package report's tests
// cross-check the two.
func BuildCondensed(ctx context.Context, lister store.BucketLister, mode wmh.Mode, skipped []string) (*Report, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "report.BuildCondensed")
	defer span.Finish()

	uf := newUnionFind()

	buckets, err := lister.CondensedBuckets(ctx, mode)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	for _, b := range buckets {
		unionBucket(uf, b.Shas)
	}

	return &Report{Communities: finalize(uf), SkippedFiles: skipped}, nil
}

// unionBucket links every sha in a collision bucket of size >= 2 into one
// set, by chaining each member to the first.
func unionBucket(uf *unionFind, bucket []string) {
	if len(bucket) < 2 {
		if len(bucket) == 1 {
			uf.ensure(bucket[0])
		}
		return
	}
	for _, sha := range bucket[1:] {
		uf.union(bucket[0], sha)
	}
}

// finalize sorts each community's members ascending, then orders
// communities by (size descending, lexicographically smallest member
// ascending).
func finalize(uf *unionFind) []Community {
	groups := uf.groups()
	out := make([]Community, 0, len(groups))
	for _, members := range groups {
		sorted := append([]string(nil), members...)
		sort.Strings(sorted)
		out = append(out, Community{Members: sorted})
	}

	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].Members[0] < out[j].Members[0]
	})
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
