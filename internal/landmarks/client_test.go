package landmarks_test

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Chauke/Legend-Cut/internal/landmarks"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testFrame() image.Image {
	return image.NewNRGBA(image.Rect(0, 0, 64, 48))
}

func meshJSON(points int) map[string]any {
	landmarkList := make([]map[string]float64, points)
	for i := range landmarkList {
		landmarkList[i] = map[string]float64{"x": 0.5, "y": 0.5, "z": 0}
	}
	return map[string]any{
		"faces": []map[string]any{
			{"landmarks": landmarkList},
		},
	}
}

func TestClient_Detect(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Image string `json:"image"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		require.NoError(t, json.NewEncoder(w).Encode(meshJSON(landmarks.MinMeshPoints)))
	}))
	defer server.Close()

	client := landmarks.NewClient(server.URL, 5*time.Second, testLogger())

	set, err := client.Detect(context.Background(), testFrame())
	require.NoError(t, err)
	require.NotNil(t, set)

	assert.Equal(t, "/detect", gotPath)
	assert.NotEmpty(t, gotBody.Image, "frame should be sent base64-encoded")
	assert.Equal(t, landmarks.MinMeshPoints, set.Len())
}

func TestClient_Detect_NoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"faces": []any{}}))
	}))
	defer server.Close()

	client := landmarks.NewClient(server.URL, 5*time.Second, testLogger())

	set, err := client.Detect(context.Background(), testFrame())
	assert.NoError(t, err)
	assert.Nil(t, set, "an empty face list is not an error")
}

func TestClient_Detect_MalformedMesh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(meshJSON(12)))
	}))
	defer server.Close()

	client := landmarks.NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Detect(context.Background(), testFrame())
	assert.Error(t, err, "a truncated mesh must be rejected")
}

func TestClient_Detect_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := landmarks.NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Detect(context.Background(), testFrame())
	assert.Error(t, err)
}

func TestClient_Detect_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := landmarks.NewClient(server.URL, 5*time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Detect(ctx, testFrame())
	assert.Error(t, err)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := landmarks.NewClient(server.URL, 5*time.Second, testLogger())
	assert.NoError(t, client.Health())

	down := landmarks.NewClient("http://127.0.0.1:1", time.Second, testLogger())
	assert.Error(t, down.Health())
}
