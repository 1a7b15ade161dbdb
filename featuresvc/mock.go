package featuresvc

import (
	"context"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/feature"
)

// MockClient returns a fixed feature set regardless of input, for tests
// that don't need to exercise real extraction semantics.
type MockClient struct {
	Features []feature.Feature
	Err      error
}

// Extract implements Client.
func (m *MockClient) Extract(_ context.Context, _ *astsvc.Node, _ ExtractProfile) ([]feature.Feature, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Features, nil
}
