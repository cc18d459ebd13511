package vision

import (
	"context"
	"slices"
)

// StaticLabeler returns a fixed label list for every image. It serves
// pre-computed labels and offline runs.
type StaticLabeler struct {
	labels []string
}

// NewStaticLabeler creates a labeler that always answers with labels.
func NewStaticLabeler(labels ...string) *StaticLabeler {
	return &StaticLabeler{labels: slices.Clone(labels)}
}

// DetectLabels returns a copy of the configured labels.
func (s *StaticLabeler) DetectLabels(ctx context.Context, _ Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.labels), nil
}

// Source returns the provider name
func (s *StaticLabeler) Source() Source {
	return SourceStatic
}
