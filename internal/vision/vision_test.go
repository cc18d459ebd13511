package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testImage = Image{Filename: "car.png", Data: []byte("fake-png-bytes")}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"car.jpg", "image/jpeg"},
		{"car.JPEG", "image/jpeg"},
		{"car.png", "image/png"},
		{"car.gif", "image/gif"},
		{"car.webp", "image/webp"},
		{"car.heic", "image/jpeg"},
		{"", "image/jpeg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMimeType(tt.filename), "DetectMimeType(%q)", tt.filename)
	}
}

func TestNew_MissingKeyIsUnavailable(t *testing.T) {
	tests := []Config{
		{Provider: "google"},
		{Provider: ""},
		{Provider: "openai", OpenAIAPIKey: "your-openai-api-key-here"},
		{Provider: "openai", OpenAIAPIKey: "   "},
		{Provider: "none", GoogleAPIKey: "real-key"},
	}
	for _, cfg := range tests {
		_, err := New(cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnavailable, "provider %q", cfg.Provider)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "azure"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "unknown vision provider")
}

func TestNew_Providers(t *testing.T) {
	l, err := New(Config{Provider: "Google", GoogleAPIKey: "key", RateLimit: 60})
	require.NoError(t, err)
	g, ok := l.(*GoogleClient)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxLabels, g.maxLabels)
	assert.NotNil(t, g.limiter)

	l, err = New(Config{Provider: "openai", OpenAIAPIKey: "key", MaxLabels: 5})
	require.NoError(t, err)
	o, ok := l.(*OpenAIClient)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", o.Model())
	assert.Equal(t, 5, o.maxLabels)
	assert.Nil(t, o.limiter)

	l, err = New(Config{Provider: "static", StaticLabels: []string{"Car"}})
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, l.Source())
}

func TestStaticLabeler_ReturnsCopy(t *testing.T) {
	s := NewStaticLabeler("Car", "Dent")
	got, err := s.DetectLabels(context.Background(), Image{})
	require.NoError(t, err)
	got[0] = "changed"

	again, _ := s.DetectLabels(context.Background(), Image{})
	assert.Equal(t, []string{"Car", "Dent"}, again)
}

func TestStaticLabeler_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStaticLabeler("Car").DetectLabels(ctx, Image{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWait_RespectsContext(t *testing.T) {
	l := newLimiter(1)
	require.NoError(t, wait(context.Background(), l))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := wait(ctx, l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestGoogleClient_DetectLabels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/images:annotate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)

		var req annotateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if assert.Len(t, req.Requests, 1) {
			assert.Equal(t, "LABEL_DETECTION", req.Requests[0].Features[0].Type)
			assert.Equal(t, 7, req.Requests[0].Features[0].MaxResults)
			data, err := base64.StdEncoding.DecodeString(req.Requests[0].Image.Content)
			assert.NoError(t, err)
			assert.Equal(t, testImage.Data, data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses":[{"labelAnnotations":[
			{"description":"Car","score":0.98},
			{"description":"Bumper","score":0.91},
			{"description":"Scratch","score":0.72}]}]}`))
	}))
	defer ts.Close()

	c := NewGoogleClient("test-key", 7)
	c.baseURL = ts.URL
	labels, err := c.DetectLabels(context.Background(), testImage)

	require.NoError(t, err)
	assert.Equal(t, []string{"Car", "Bumper", "Scratch"}, labels)
	assert.Equal(t, SourceGoogle, c.Source())
}

func TestClients_TransportErrorHidesKey(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	unreachable := ts.URL
	ts.Close()

	g := NewGoogleClient("AIzaSecretKey123", 10)
	g.baseURL = unreachable
	_, err := g.DetectLabels(context.Background(), testImage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.NotContains(t, err.Error(), "AIzaSecretKey123")
	assert.NotContains(t, err.Error(), unreachable)

	o := NewOpenAIClient("sk-secret-key-123", "", 10)
	o.baseURL = unreachable
	_, err = o.DetectLabels(context.Background(), testImage)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "sk-secret-key-123")
	assert.NotContains(t, err.Error(), unreachable)
}

func TestGoogleClient_BillingErrorSurfacesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"status":"PERMISSION_DENIED","details":[{"reason":"BILLING_DISABLED"}]}}`))
	}))
	defer ts.Close()

	c := NewGoogleClient("test-key", 10)
	c.baseURL = ts.URL
	_, err := c.DetectLabels(context.Background(), testImage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (403)")
	assert.Contains(t, err.Error(), "BILLING_DISABLED")
}

func TestGoogleClient_PerImageError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{"error":{"code":3,"status":"INVALID_ARGUMENT","message":"Bad image data."}}]}`))
	}))
	defer ts.Close()

	c := NewGoogleClient("test-key", 10)
	c.baseURL = ts.URL
	_, err := c.DetectLabels(context.Background(), testImage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT: Bad image data.")
}

func TestGoogleClient_InvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	c := NewGoogleClient("test-key", 10)
	c.baseURL = ts.URL
	_, err := c.DetectLabels(context.Background(), testImage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestGoogleClient_EmptyImage(t *testing.T) {
	c := NewGoogleClient("test-key", 10)
	_, err := c.DetectLabels(context.Background(), Image{Filename: "car.jpg"})
	assert.True(t, errors.Is(err, errEmptyImage))
}

func TestOpenAIClient_DetectLabels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "gpt-4o", req.Model)
		if assert.Len(t, req.Messages, 1) && assert.Len(t, req.Messages[0].Content, 2) {
			assert.Equal(t, "image_url", req.Messages[0].Content[0].Type)
			assert.Contains(t, req.Messages[0].Content[0].ImageURL.URL, "data:image/png;base64,")
		}

		w.Write([]byte(`{"model":"gpt-4o","choices":[{"message":{"content":"[\"car\", \"dent\", \"bumper\", \"metal\"]"}}]}`))
	}))
	defer ts.Close()

	c := NewOpenAIClient("test-key", "", 3)
	c.baseURL = ts.URL
	labels, err := c.DetectLabels(context.Background(), testImage)

	require.NoError(t, err)
	assert.Equal(t, []string{"car", "dent", "bumper"}, labels)
}

func TestOpenAIClient_QuotaError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
	}))
	defer ts.Close()

	c := NewOpenAIClient("test-key", "gpt-4o-mini", 10)
	c.baseURL = ts.URL
	_, err := c.DetectLabels(context.Background(), testImage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (429)")
	assert.Contains(t, err.Error(), "insufficient_quota")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	c := NewOpenAIClient("test-key", "", 10)
	c.baseURL = ts.URL
	_, err := c.DetectLabels(context.Background(), testImage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response choices")
}

func TestParseLabelList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"json array", `["car", "tire"]`, []string{"car", "tire"}},
		{"fenced json", "```json\n[\"car\", \"rust\"]\n```", []string{"car", "rust"}},
		{"bare fence", "```\n[\"hood\"]\n```", []string{"hood"}},
		{"comma list", "car, dent , bumper", []string{"car", "dent", "bumper"}},
		{"bullet lines", "- car\n- scratch\n* door", []string{"car", "scratch", "door"}},
		{"loose brackets", `[car, 'glass']`, []string{"car", "glass"}},
		{"blank entries dropped", `["car", "", "  "]`, []string{"car"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLabelList(tt.content))
		})
	}
}

func TestMockLabeler_Defaults(t *testing.T) {
	m := &MockLabeler{}
	labels, err := m.DetectLabels(context.Background(), testImage)
	assert.NoError(t, err)
	assert.Nil(t, labels)
	assert.Equal(t, SourceGoogle, m.Source())
}
