// SPDX-License-Identifier: MIT
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptic/internal/codec"
	"haptic/internal/haptic"
	applog "haptic/internal/log"
	"haptic/internal/service"
	"haptic/internal/store"
	"haptic/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*Server, *utils.RecordingTransport) {
	t.Helper()
	out := &utils.RecordingTransport{}
	svc := service.New(store.NewMemory(), service.WithClock(func() time.Time {
		return time.UnixMilli(1700000000000)
	}))
	s := New(Config{MaxUploadBytes: 1 << 20, RequestTimeout: time.Second}, svc, nil, out)
	t.Cleanup(func() { s.Close() })
	return s, out
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, s *Server, path string, video []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	_, err = fw.Write(video)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPresets(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Presets []haptic.Preset `json:"presets"`
	}
	decode(t, w, &list)
	assert.GreaterOrEqual(t, len(list.Presets), 4)

	w = do(t, s, http.MethodGet, "/api/presets?category=gaming", nil)
	decode(t, w, &list)
	require.Len(t, list.Presets, 1)
	assert.Equal(t, "gaming_explosive", list.Presets[0].ID)

	w = do(t, s, http.MethodGet, "/api/presets/action_intense", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p haptic.Preset
	decode(t, w, &p)
	assert.Equal(t, "Action Intense", p.Name)
	assert.Len(t, p.Patterns, 2)

	w = do(t, s, http.MethodGet, "/api/presets/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, w))
}

func TestAnalysisToPatterns(t *testing.T) {
	s, _ := newTestServer(t)

	body := map[string]any{
		"analysis": map[string]any{
			"bassFrequencies":  []float64{201, 180, 120, 75, 30},
			"timeStamps":       []int64{0, 100, 200, 300, 400},
			"intensity":        []float64{0.5, 0.5, 0.5, 0.5, 0.5},
			"duration":         0.5,
			"sampleIntervalMs": 100,
		},
	}
	w := do(t, s, http.MethodPost, "/api/analyses", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID     string `json:"id"`
		FileID string `json:"fileId"`
	}
	decode(t, w, &created)
	assert.Contains(t, created.ID, "analysis_1700000000000_")
	assert.Contains(t, created.FileID, "file_1700000000000_")

	w = do(t, s, http.MethodGet, "/api/analyses/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodPost, "/api/analyses/"+created.ID+"/patterns", map[string]string{"prompt": "intense"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var gen struct {
		Patterns []haptic.Event `json:"patterns"`
	}
	decode(t, w, &gen)
	require.Len(t, gen.Patterns, 4)
	assert.Equal(t, haptic.Impact, gen.Patterns[0].Kind)
	assert.InDelta(t, 0.9, gen.Patterns[0].Intensity, 1e-9)

	w = do(t, s, http.MethodGet, "/api/patterns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Patterns []haptic.Event `json:"patterns"`
	}
	decode(t, w, &all)
	assert.Len(t, all.Patterns, 4)

	w = do(t, s, http.MethodPost, "/api/analyses/analysis_missing/patterns", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAnalysisValidation(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/analyses", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/analyses", map[string]any{
		"analysis": map[string]any{
			"bassFrequencies": []float64{300},
			"timeStamps":      []int64{0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidRequest, errorCode(t, w))
}

func TestEmbedAndExtract(t *testing.T) {
	s, _ := newTestServer(t)
	video := []byte("not actually a video")
	patterns := `[{"timestamp":0,"intensity":0.9,"duration":150,"type":"impact"}]`

	w := upload(t, s, "/api/embed", video, map[string]string{
		"patterns": patterns,
		"options":  `{"quality":"low"}`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="haptic_clip.mp4"`)
	tagged := w.Body.Bytes()
	assert.Equal(t, video, tagged[:len(video)])

	w = upload(t, s, "/api/extract", tagged, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Found    bool         `json:"found"`
		Metadata haptic.Block `json:"metadata"`
	}
	decode(t, w, &got)
	assert.True(t, got.Found)
	assert.Equal(t, codec.Version, got.Metadata.Version)
	assert.Equal(t, haptic.Low, got.Metadata.Options.Quality)
	assert.Equal(t, haptic.MP4, got.Metadata.Options.ContainerFormat)
	require.Len(t, got.Metadata.Patterns, 1)
}

func TestExtractAbsentAndCorrupt(t *testing.T) {
	s, _ := newTestServer(t)

	w := upload(t, s, "/api/extract", []byte("plain"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Found bool `json:"found"`
	}
	decode(t, w, &got)
	assert.False(t, got.Found)

	w = upload(t, s, "/api/extract", []byte("plainHAPTIC\x00\x00"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, CodeCorruptMetadata, errorCode(t, w))

	block := codec.NewBlock(nil, haptic.DefaultOptions(), time.UnixMilli(0))
	block.Version = "9.9"
	tagged, err := codec.Embed([]byte("v"), block)
	require.NoError(t, err)
	w = upload(t, s, "/api/extract", tagged, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, CodeUnsupportedVersion, errorCode(t, w))
}

func TestEmbedRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t)

	w := upload(t, s, "/api/embed", []byte("v"), map[string]string{"patterns": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, s, "/api/embed", []byte("v"), map[string]string{
		"patterns": `[{"timestamp":0,"intensity":4,"duration":150,"type":"impact"}]`,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/embed", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlay(t *testing.T) {
	s, out := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/play", map[string]any{
		"patterns": []haptic.Event{
			{TimestampMs: 0, Intensity: 0.5, DurationMs: 100, Kind: haptic.Pulse},
			{TimestampMs: 10, Intensity: 0.5, DurationMs: 100, Kind: haptic.Pulse},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Eventually(t, func() bool { return out.Len() == 2 }, 2*time.Second, 5*time.Millisecond)

	w = do(t, s, http.MethodPost, "/api/play", map[string]any{
		"patterns": []map[string]any{{"timestamp": 0, "intensity": 0.5, "duration": 0, "type": "pulse"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
