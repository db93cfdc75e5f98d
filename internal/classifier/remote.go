package classifier

import (
	"context"
	"fmt"
	"math"
	"time"

	commonhttp "screening-workers/internal/common/http"
	"screening-workers/internal/scoring"
)

// RemoteModel calls an HTTP model server:
//
//	POST {"instances": [[vp, mgp, te], ...]} -> {"predictions": [1, 0, ...]}
type RemoteModel struct {
	endpoint string
	client   *commonhttp.Client
}

type predictRequest struct {
	Instances [][3]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func NewRemoteModel(endpoint, apiKey string, timeout time.Duration) (*RemoteModel, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("remote classifier endpoint is empty")
	}
	client := commonhttp.NewClient(timeout)
	if apiKey != "" {
		client.WithHeader("Authorization", "Bearer "+apiKey)
	}
	return &RemoteModel{endpoint: endpoint, client: client}, nil
}

func (m *RemoteModel) Predict(ctx context.Context, rows []scoring.CategoryScores) ([]int, error) {
	if len(rows) == 0 {
		return []int{}, nil
	}

	req := predictRequest{Instances: make([][3]float64, len(rows))}
	for i, row := range rows {
		req.Instances[i] = features(row)
	}

	var resp predictResponse
	if err := m.client.PostJSON(ctx, m.endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("remote predict: %w", err)
	}

	labels := make([]int, len(resp.Predictions))
	for i, p := range resp.Predictions {
		if p != math.Trunc(p) {
			return nil, fmt.Errorf("remote predict: prediction %v at %d is not a class label", p, i)
		}
		labels[i] = int(p)
	}
	return labels, nil
}

func (m *RemoteModel) Close() error { return nil }
