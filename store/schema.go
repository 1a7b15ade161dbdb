// Package store implements the hashtable index and its schema/persistence
// contracts: an inverted index mapping (hashtable, band bytes) to
// content-hash SHAs, backed by a wide-column store.
package store

// Table names are bindings, not on-wire identifiers — the keyspace and
// actual column-family names are a deployment concern of the schema-
// application helper (out of scope here).
const (
	tableHashtablesFile = "hashtables_file"
	tableHashtablesFunc = "hashtables_func"
	tableMeta           = "meta"
	tableFeaturesDocs   = "features_docs"
	tableFeaturesFreq   = "features_freq"
	tableSkippedFiles   = "skipped_files"
)

// hashtablesTable returns the table binding for a given mode name ("file" or "func").
func hashtablesTable(modeName string) string {
	if modeName == "func" {
		return tableHashtablesFunc
	}
	return tableHashtablesFile
}

// HashtableRow is one row of hashtables_{mode}: PK=(hashtable, value, sha).
type HashtableRow struct {
	Hashtable int32
	Value     []byte
	Sha       string
}

// RepoFile is the provenance of a content hash: (repo, commit, path, sha1).
// Rows in meta may carry more than one RepoFile per sha when a file is
// duplicated across repos or paths.
//
// Name and Line are populated only for function-mode rows, where Sha is the
// opaque "path@content_sha1" composite key: a function's display name and
// UAST start line are still needed to format a result, so indexing a
// function writes them alongside the standard provenance columns rather
// than trying to recover them by parsing the composite key.
type RepoFile struct {
	Repo   string
	Commit string
	Path   string
	Sha    string
	Name   string
	Line   int
}

// DocsRow is one row of features_docs: id ("file" | "func") -> docs count.
type DocsRow struct {
	ID   string
	Docs int
}

// FreqRow is one row of features_freq: (id, feature) -> weight.
type FreqRow struct {
	ID      string
	Feature string
	Weight  int
}

// SkippedFile is one row of skipped_files: a path a gemini-hash run could
// not index, with the error class and reason it recorded at the time. This
// is what lets a later, independent gemini-report run surface real
// skipped-files data instead of an empty placeholder.
type SkippedFile struct {
	Path   string
	Kind   string
	Reason string
}
