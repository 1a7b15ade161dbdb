package store

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/afcarl/gemini/wmh"
)

// MemIndex is an in-memory Index used by tests and by any caller that wants
// a zero-dependency index without a live wide-column store. It preserves
// the same ordering and collision semantics as CQLIndex.
type MemIndex struct {
	mu      sync.Mutex
	rows    map[string][]HashtableRow // keyed by mode name
	meta    map[string][]RepoFile     // keyed by sha
	skipped []SkippedFile
}

// NewMemIndex returns an empty MemIndex.
func NewMemIndex() *MemIndex {
	return &MemIndex{
		rows: make(map[string][]HashtableRow),
		meta: make(map[string][]RepoFile),
	}
}

func (m *MemIndex) UpsertBand(_ context.Context, hashtable int32, value []byte, sha string, mode wmh.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mode.Name()
	row := HashtableRow{Hashtable: hashtable, Value: append([]byte(nil), value...), Sha: sha}
	if m.hasRowLocked(key, row) {
		return nil
	}
	m.rows[key] = append(m.rows[key], row)
	m.sortLocked(key)
	return nil
}

func (m *MemIndex) hasRowLocked(key string, row HashtableRow) bool {
	for _, r := range m.rows[key] {
		if r.Hashtable == row.Hashtable && bytes.Equal(r.Value, row.Value) && r.Sha == row.Sha {
			return true
		}
	}
	return false
}

func (m *MemIndex) sortLocked(key string) {
	rows := m.rows[key]
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Hashtable != rows[j].Hashtable {
			return rows[i].Hashtable < rows[j].Hashtable
		}
		if c := bytes.Compare(rows[i].Value, rows[j].Value); c != 0 {
			return c < 0
		}
		return rows[i].Sha < rows[j].Sha
	})
}

func (m *MemIndex) Lookup(_ context.Context, hashtable int32, value []byte, mode wmh.Mode) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, r := range m.rows[mode.Name()] {
		if r.Hashtable == hashtable && bytes.Equal(r.Value, value) {
			out = append(out, r.Sha)
		}
	}
	return out, nil
}

func (m *MemIndex) ScanAll(_ context.Context, mode wmh.Mode) (RowIterator, error) {
	m.mu.Lock()
	rows := append([]HashtableRow(nil), m.rows[mode.Name()]...)
	m.mu.Unlock()

	return &sliceIterator{rows: rows, pos: -1}, nil
}

func (m *MemIndex) FindByContentHash(_ context.Context, sha string) ([]RepoFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RepoFile(nil), m.meta[sha]...), nil
}

func (m *MemIndex) PutMeta(_ context.Context, rf RepoFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[rf.Sha] = append(m.meta[rf.Sha], rf)
	return nil
}

func (m *MemIndex) PutSkip(_ context.Context, sf SkippedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped = append(m.skipped, sf)
	return nil
}

func (m *MemIndex) ListSkipped(_ context.Context) ([]SkippedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SkippedFile(nil), m.skipped...), nil
}

// CondensedBuckets groups m's rows by (hashtable, value) in memory. Since
// MemIndex already keeps rows sorted by (hashtable, value, sha), consecutive
// equal-key runs are exactly its buckets — the same grouping ScanAll's
// caller would perform by hand, offered here as the direct-bucket path.
func (m *MemIndex) CondensedBuckets(_ context.Context, mode wmh.Mode) ([]Bucket, error) {
	m.mu.Lock()
	rows := append([]HashtableRow(nil), m.rows[mode.Name()]...)
	m.mu.Unlock()

	var out []Bucket
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Hashtable == r.Hashtable && bytes.Equal(out[n-1].Value, r.Value) {
			out[n-1].Shas = append(out[n-1].Shas, r.Sha)
			continue
		}
		out = append(out, Bucket{Hashtable: r.Hashtable, Value: append([]byte(nil), r.Value...), Shas: []string{r.Sha}})
	}
	return out, nil
}

type sliceIterator struct {
	rows []HashtableRow
	pos  int
}

func (s *sliceIterator) Next() bool {
	s.pos++
	return s.pos < len(s.rows)
}

func (s *sliceIterator) Row() HashtableRow { return s.rows[s.pos] }
func (s *sliceIterator) Err() error        { return nil }
func (s *sliceIterator) Close() error      { return nil }
