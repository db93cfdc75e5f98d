package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"screening-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelServer(t *testing.T, handler func(req predictRequest) (int, interface{})) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteModel_Predict(t *testing.T) {
	srv := newModelServer(t, func(req predictRequest) (int, interface{}) {
		preds := make([]float64, len(req.Instances))
		for i, inst := range req.Instances {
			if inst[0] >= 3 {
				preds[i] = 1
			}
		}
		return http.StatusOK, map[string]interface{}{"predictions": preds}
	})

	m, err := NewRemoteModel(srv.URL, "", time.Second)
	require.NoError(t, err)

	labels, err := m.Predict(context.Background(), []scoring.CategoryScores{
		scores(5, 4, 4), scores(2, 4, 4), scores(3, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, labels)
}

func TestRemoteModel_SendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"predictions":[0]}`))
	}))
	t.Cleanup(srv.Close)

	m, err := NewRemoteModel(srv.URL, "secret", time.Second)
	require.NoError(t, err)

	labels, err := m.Predict(context.Background(), []scoring.CategoryScores{scores(1, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, labels)
}

func TestRemoteModel_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   interface{}
	}{
		{"server error", http.StatusInternalServerError, map[string]string{"error": "boom"}},
		{"fractional prediction", http.StatusOK, map[string]interface{}{"predictions": []float64{0.73}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newModelServer(t, func(predictRequest) (int, interface{}) { return tt.status, tt.body })

			m, err := NewRemoteModel(srv.URL, "", time.Second)
			require.NoError(t, err)

			_, err = m.Predict(context.Background(), []scoring.CategoryScores{scores(3, 3, 3)})
			assert.Error(t, err)
		})
	}
}

func TestNewRemoteModel_RequiresEndpoint(t *testing.T) {
	_, err := NewRemoteModel("", "", time.Second)
	assert.Error(t, err)
}
