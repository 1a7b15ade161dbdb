package store

import (
	"bytes"
	"context"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/afcarl/gemini/internal/gemerr"
	"github.com/afcarl/gemini/internal/metrics"
	"github.com/afcarl/gemini/wmh"
)

// CQLIndex is the wide-column store implementation of Index, speaking
// CQL-style queries against a Cassandra-compatible cluster via gocql. It
// only relies on INSERT, SELECT ... WHERE PK=?, full-table scan in PK
// order, and token-range parallel scan.
type CQLIndex struct {
	session  *gocql.Session
	keyspace string
	retries  int
}

// Config is the connection configuration for a CQLIndex.
type Config struct {
	Hosts      []string
	Keyspace   string
	Timeout    time.Duration
	MaxRetries int // default 3
}

// NewCQLIndex dials the backend cluster and returns a ready CQLIndex.
// Transport failures during dial are BackendUnavailable.
func NewCQLIndex(cfg Config) (*CQLIndex, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrap(gemerr.ErrBackendUnavailable, err.Error())
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	return &CQLIndex{session: session, keyspace: cfg.Keyspace, retries: retries}, nil
}

// Close releases the underlying session.
func (c *CQLIndex) Close() {
	c.session.Close()
}

// observe records one backend operation's RED+F metrics, op naming the
// logical call (e.g. "upsert_band", "scan_all") rather than the raw CQL
// statement.
func (c *CQLIndex) observe(op string, start time.Time, err error) {
	metrics.Backend.Observe(time.Since(start), err, op)
}

// withRetry runs op up to c.retries times in total (the first try
// included), with exponential backoff between attempts, surfacing
// BackendUnavailable if every attempt fails. This is a boundary
// retry policy for transport failures against the backend, not a
// general-purpose retry middleware.
func (c *CQLIndex) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	backoff := 50 * time.Millisecond
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
	}
	return errors.Wrap(gemerr.ErrBackendUnavailable, lastErr.Error())
}

func (c *CQLIndex) UpsertBand(ctx context.Context, hashtable int32, value []byte, sha string, mode wmh.Mode) error {
	start := time.Now()
	table := hashtablesTable(mode.Name())
	stmt := "INSERT INTO " + table + " (hashtable, value, sha) VALUES (?, ?, ?)"

	err := c.withRetry(ctx, func() error {
		return c.session.Query(stmt, hashtable, value, sha).WithContext(ctx).Exec()
	})
	c.observe("upsert_band", start, err)
	return err
}

func (c *CQLIndex) Lookup(ctx context.Context, hashtable int32, value []byte, mode wmh.Mode) ([]string, error) {
	start := time.Now()
	table := hashtablesTable(mode.Name())
	stmt := "SELECT sha FROM " + table + " WHERE hashtable = ? AND value = ?"

	var shas []string
	err := c.withRetry(ctx, func() error {
		shas = shas[:0]
		iter := c.session.Query(stmt, hashtable, value).WithContext(ctx).Iter()
		var sha string
		for iter.Scan(&sha) {
			shas = append(shas, sha)
		}
		return iter.Close()
	})
	c.observe("lookup", start, err)
	if err != nil {
		return nil, err
	}
	return shas, nil
}

func (c *CQLIndex) ScanAll(ctx context.Context, mode wmh.Mode) (RowIterator, error) {
	start := time.Now()
	table := hashtablesTable(mode.Name())
	stmt := "SELECT hashtable, value, sha FROM " + table

	iter := c.session.Query(stmt).WithContext(ctx).Iter()
	c.observe("scan_all", start, nil)
	return &cqlIterator{iter: iter}, nil
}

func (c *CQLIndex) FindByContentHash(ctx context.Context, sha string) ([]RepoFile, error) {
	start := time.Now()
	stmt := "SELECT repo, commit, path, name, line FROM " + tableMeta + " WHERE sha = ?"

	var out []RepoFile
	err := c.withRetry(ctx, func() error {
		out = out[:0]
		iter := c.session.Query(stmt, sha).WithContext(ctx).Iter()
		var repo, commit, path, name string
		var line int
		for iter.Scan(&repo, &commit, &path, &name, &line) {
			out = append(out, RepoFile{Repo: repo, Commit: commit, Path: path, Sha: sha, Name: name, Line: line})
		}
		return iter.Close()
	})
	c.observe("find_by_content_hash", start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CQLIndex) PutMeta(ctx context.Context, rf RepoFile) error {
	start := time.Now()
	stmt := "INSERT INTO " + tableMeta + " (sha, repo, commit, path, name, line) VALUES (?, ?, ?, ?, ?, ?)"
	err := c.withRetry(ctx, func() error {
		return c.session.Query(stmt, rf.Sha, rf.Repo, rf.Commit, rf.Path, rf.Name, rf.Line).WithContext(ctx).Exec()
	})
	c.observe("put_meta", start, err)
	return err
}

func (c *CQLIndex) PutSkip(ctx context.Context, sf SkippedFile) error {
	start := time.Now()
	stmt := "INSERT INTO " + tableSkippedFiles + " (path, kind, reason) VALUES (?, ?, ?)"
	err := c.withRetry(ctx, func() error {
		return c.session.Query(stmt, sf.Path, sf.Kind, sf.Reason).WithContext(ctx).Exec()
	})
	c.observe("put_skip", start, err)
	return err
}

func (c *CQLIndex) ListSkipped(ctx context.Context) ([]SkippedFile, error) {
	start := time.Now()
	stmt := "SELECT path, kind, reason FROM " + tableSkippedFiles

	var out []SkippedFile
	err := c.withRetry(ctx, func() error {
		out = out[:0]
		iter := c.session.Query(stmt).WithContext(ctx).Iter()
		var path, kind, reason string
		for iter.Scan(&path, &kind, &reason) {
			out = append(out, SkippedFile{Path: path, Kind: kind, Reason: reason})
		}
		return iter.Close()
	})
	c.observe("list_skipped", start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CondensedBuckets asks the backend to group rows by (hashtable, value)
// directly, rather than having the caller group a ScanAll stream by hand.
// Cassandra's GROUP BY only groups rows already adjacent in clustering
// order, which (hashtable, value, sha) satisfies here, so the grouping is a
// genuine backend-side operation rather than a client-side rewrite of
// ScanAll. Package report's tests cross-check the two strategies through
// MemIndex only; this CQL implementation is not exercised by them.
func (c *CQLIndex) CondensedBuckets(ctx context.Context, mode wmh.Mode) ([]Bucket, error) {
	start := time.Now()
	table := hashtablesTable(mode.Name())
	stmt := "SELECT hashtable, value, sha FROM " + table + " GROUP BY hashtable, value"

	var out []Bucket
	err := c.withRetry(ctx, func() error {
		out = out[:0]
		iter := c.session.Query(stmt).WithContext(ctx).Iter()
		var hashtable int32
		var value []byte
		var sha string
		for iter.Scan(&hashtable, &value, &sha) {
			if n := len(out); n > 0 && out[n-1].Hashtable == hashtable && bytes.Equal(out[n-1].Value, value) {
				out[n-1].Shas = append(out[n-1].Shas, sha)
				continue
			}
			out = append(out, Bucket{Hashtable: hashtable, Value: append([]byte(nil), value...), Shas: []string{sha}})
		}
		return iter.Close()
	})
	c.observe("condensed_buckets", start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cqlIterator adapts *gocql.Iter to RowIterator. A scan that aborts
// partway through (iter.Close returning a non-nil error after rows were
// already yielded) is surfaced as ErrScanInterrupted, never silently
// truncated.
type cqlIterator struct {
	iter *gocql.Iter
	row  HashtableRow
	err  error
	done bool
}

func (c *cqlIterator) Next() bool {
	if c.done {
		return false
	}
	var hashtable int32
	var value []byte
	var sha string
	if !c.iter.Scan(&hashtable, &value, &sha) {
		c.done = true
		if closeErr := c.iter.Close(); closeErr != nil {
			c.err = errors.Wrap(gemerr.ErrScanInterrupted, closeErr.Error())
		}
		return false
	}
	c.row = HashtableRow{Hashtable: hashtable, Value: value, Sha: sha}
	return true
}

func (c *cqlIterator) Row() HashtableRow { return c.row }
func (c *cqlIterator) Err() error        { return c.err }
func (c *cqlIterator) Close() error      { return c.iter.Close() }
