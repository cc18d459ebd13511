package vision

import "context"

// MockLabeler is a test double whose behavior is set per test.
type MockLabeler struct {
	DetectLabelsFn func(ctx context.Context, img Image) ([]string, error)
	SourceName     Source
}

// DetectLabels calls the mock function.
func (m *MockLabeler) DetectLabels(ctx context.Context, img Image) ([]string, error) {
	if m.DetectLabelsFn != nil {
		return m.DetectLabelsFn(ctx, img)
	}
	return nil, nil
}

// Source returns SourceName, defaulting to Google Vision.
func (m *MockLabeler) Source() Source {
	if m.SourceName == "" {
		return SourceGoogle
	}
	return m.SourceName
}
