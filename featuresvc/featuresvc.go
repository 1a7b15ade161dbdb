// Package featuresvc is the client for the external feature-extraction
// service: remote procedures for identifiers, literals, uast2seq, and
// graphlet extraction, plus a batched extract taking all four option sets
// at once. Gemini's core only ever calls the batched form, with the two
// fixed profiles defined below for file mode and function mode.
package featuresvc

import (
	"context"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/feature"
)

// IdentifiersOptions configures the identifiers extractor.
type IdentifiersOptions struct {
	Weight    uint32
	SplitStem bool
}

// LiteralsOptions configures the literals extractor.
type LiteralsOptions struct {
	Weight uint32
}

// GraphletOptions configures the graphlet extractor.
type GraphletOptions struct {
	Weight uint32
}

// UAST2SeqOptions configures the uast2seq extractor.
type UAST2SeqOptions struct {
	Weight uint32
	SeqLen []int
	Stride int
}

// ExtractProfile is the batched extract request's option bundle. A nil
// field means that extractor is absent from the batch (file mode omits
// UAST2Seq; function mode omits Literals).
type ExtractProfile struct {
	Identifiers      *IdentifiersOptions
	Literals         *LiteralsOptions
	Graphlet         *GraphletOptions
	UAST2Seq         *UAST2SeqOptions
	DocFreqThreshold int
}

// FileProfile is the fixed file-level extraction profile.
var FileProfile = ExtractProfile{
	Identifiers:      &IdentifiersOptions{Weight: 194, SplitStem: true},
	Graphlet:         &GraphletOptions{Weight: 548},
	Literals:         &LiteralsOptions{Weight: 264},
	DocFreqThreshold: 5,
}

// FuncProfile is the fixed function-level extraction profile.
var FuncProfile = ExtractProfile{
	Identifiers:      &IdentifiersOptions{Weight: 535, SplitStem: true},
	Graphlet:         &GraphletOptions{Weight: 5707},
	UAST2Seq:         &UAST2SeqOptions{Weight: 369, SeqLen: []int{3}, Stride: 1},
	DocFreqThreshold: 5,
}

// Client is the feature-extraction service interface. Gemini's core only
// calls Extract (the batched form); the four named single-kind RPCs exist
// on the wire but are out of scope for this client.
type Client interface {
	Extract(ctx context.Context, uast *astsvc.Node, profile ExtractProfile) ([]feature.Feature, error)
}
