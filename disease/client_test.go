package disease

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(FormField)
		if !assert.NoError(t, err) {
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "leaf.jpg", header.Filename)
		assert.Equal(t, "image-bytes", string(data))

		w.Write([]byte(`{"plant":"Tomato","disease":"Early Blight","confidence":0.87,"remedy":"Copper fungicide"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "leaf.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Tomato", res.PlantName)
	assert.Equal(t, "Early Blight", res.Disease)
	assert.Equal(t, 0.87, res.Confidence)
	assert.Equal(t, "Moderate", res.Severity)
	assert.Equal(t, "Copper fungicide", res.Treatment)
}

func TestClientAnalyzeBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "leaf.jpg", strings.NewReader("x"))
	assert.Nil(t, res)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, CodeBackend, derr.Code)
	assert.Equal(t, "Backend Server Error 500: model not loaded", derr.Message)
	assert.Equal(t, CodeBackend, derr.APIError().Code)
}

func TestClientAnalyzeEmptyErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "leaf.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "Backend Server Error 503: Service Unavailable", err.Error())
}

func TestClientAnalyzeInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disease":"Rust"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "leaf.jpg", strings.NewReader("x"))
	assert.Nil(t, res)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, CodeInvalidResponse, derr.Code)
	assert.Equal(t, "Invalid response from backend server", derr.Message)
}

func TestClientAnalyzeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Analyze(context.Background(), "leaf.jpg", strings.NewReader("x"))
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, CodeNetwork, derr.Code)
}
