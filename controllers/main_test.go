package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"cropwise/config"
	"cropwise/models"
	"cropwise/predict"
	"cropwise/realtime"
	"cropwise/services"
	"cropwise/weather"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	filename string
	res      *models.DiseaseDetection
	err      error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, filename string, image io.Reader) (*models.DiseaseDetection, error) {
	s.filename = filename
	return s.res, s.err
}

type testApp struct {
	router   *gin.Engine
	handler  *Handler
	analyzer *stubAnalyzer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	config.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	soil := realtime.NewSoilStore(db, realtime.NewMessageBroker(nil), nil)
	analyzer := &stubAnalyzer{}
	h := &Handler{
		Secret:          []byte("test-secret"),
		DefaultDeviceID: "Device_0001",
		Soil:            soil,
		Recommender: &services.Recommender{
			Soil:    soil,
			Weather: weather.DefaultStatic(),
			Crops:   services.CropPolicy(nil, nil),
		},
		Heuristic: predict.NewHeuristicYield(rand.NewPCG(1, 1)),
		Disease:   analyzer,
	}
	r := gin.New()
	Register(r, h, []string{"http://localhost:3000"})
	return &testApp{router: r, handler: h, analyzer: analyzer}
}

func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signUp registers email and returns its session token.
func (a *testApp) signUp(t *testing.T, email string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/auth/signup", gin.H{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
