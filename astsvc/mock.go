package astsvc

import "context"

// MockClient is a canned Client for tests: it returns results keyed by
// filename, the way lookup's test suite exercises Engine.Run without a live
// AST service.
type MockClient struct {
	Results map[string]ParseResult
	Errs    map[string]error
}

// Parse implements Client.
func (m *MockClient) Parse(_ context.Context, filename string, _ []byte) (ParseResult, error) {
	if err, ok := m.Errs[filename]; ok {
		return ParseResult{}, err
	}
	return m.Results[filename], nil
}
