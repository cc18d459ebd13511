package api

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseDiagnosisID(t *testing.T) {
	t.Run("valid UUID", func(t *testing.T) {
		expected := uuid.New()
		req := httptest.NewRequest("GET", "/api/diagnoses/"+expected.String(), nil)
		req.SetPathValue("diagnosisID", expected.String())

		got, err := parseDiagnosisID(req)

		assert.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("invalid UUID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/diagnoses/invalid", nil)
		req.SetPathValue("diagnosisID", "invalid")

		_, err := parseDiagnosisID(req)

		assert.Error(t, err)
	})
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 50, 0},
		{"?limit=101", 50, 0},
		{"?limit=100", 100, 0},
		{"?limit=abc&offset=-1", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			limit, offset := parsePagination(httptest.NewRequest("GET", "/api/diagnoses"+tt.query, nil))
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
