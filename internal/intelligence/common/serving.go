package common

import (
	"context"
	"errors"
	"time"

	"github.com/turtacn/HitForge-Discovery/internal/infrastructure/monitoring/logging"
)

// ServingClient defines the interface for interacting with model serving infrastructure.
type ServingClient interface {
	Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error)
	BatchPredict(ctx context.Context, reqs []*PredictRequest) ([]*PredictResponse, error)
	StreamPredict(ctx context.Context, req *PredictRequest) (<-chan *PredictResponse, error)
	GetModelStatus(ctx context.Context, modelName string) (*ServingModelStatus, error)
	ListServingModels(ctx context.Context) ([]*ServingModelStatus, error)
	Healthy(ctx context.Context) error
	Close() error
}

// ServingModelStatus represents the status of a model on the serving infrastructure.
type ServingModelStatus struct {
	ModelName      string                `json:"model_name"`
	Versions       []*ServingVersionStatus `json:"versions"`
	DefaultVersion string                `json:"default_version"`
}

// ServingVersionStatus represents the status of a specific model version.
type ServingVersionStatus struct {
	Version      string    `json:"version"`
	Status       string    `json:"status"` // Ready, Loading, etc.
	LastInferenceAt time.Time `json:"last_inference_at"`
	InferenceCount  int64     `json:"inference_count"`
	AvgLatencyMs    float64   `json:"avg_latency_ms"`
}

var (
	ErrServingUnavailable = errors.New("serving unavailable")
	ErrModelNotDeployed   = errors.New("model not deployed")
	ErrInferenceTimeout   = errors.New("inference timeout")
	ErrAllNodesUnhealthy  = errors.New("all nodes unhealthy")
	ErrClientClosed       = errors.New("client closed")
)

// grpcServingClient implements ServingClient using gRPC.
type grpcServingClient struct {
	addresses []string
	logger    logging.Logger
	// Client conn management would go here
}

// NewGRPCServingClient creates a new gRPC client.
func NewGRPCServingClient(addresses []string, logger logging.Logger) (ServingClient, error) {
	if len(addresses) == 0 {
		return nil, errors.New("addresses cannot be empty")
	}
	return &grpcServingClient{
		addresses: addresses,
		logger:    logger,
	}, nil
}

func (c *grpcServingClient) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	// Mock implementation for now
	return &PredictResponse{
		ModelName: req.ModelName,
		Outputs:   map[string][]byte{"output": []byte("mock_output")},
	}, nil
}

func (c *grpcServingClient) BatchPredict(ctx context.Context, reqs []*PredictRequest) ([]*PredictResponse, error) {
	var responses []*PredictResponse
	for _, req := range reqs {
		res, err := c.Predict(ctx, req)
		if err != nil {
			return nil, err
		}
		responses = append(responses, res)
	}
	return responses, nil
}

func (c *grpcServingClient) StreamPredict(ctx context.Context, req *PredictRequest) (<-chan *PredictResponse, error) {
	ch := make(chan *PredictResponse)
	close(ch)
	return ch, nil
}

func (c *grpcServingClient) GetModelStatus(ctx context.Context, modelName string) (*ServingModelStatus, error) {
	return &ServingModelStatus{ModelName: modelName}, nil
}

func (c *grpcServingClient) ListServingModels(ctx context.Context) ([]*ServingModelStatus, error) {
	return []*ServingModelStatus{}, nil
}

func (c *grpcServingClient) Healthy(ctx context.Context) error {
	return nil
}

func (c *grpcServingClient) Close() error {
	return nil
}

// httpServingClient implements ServingClient using HTTP.
type httpServingClient struct {
	baseURL string
	logger  logging.Logger
}

// NewHTTPServingClient creates a new HTTP client.
func NewHTTPServingClient(baseURL string, logger logging.Logger) (ServingClient, error) {
	if baseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}
	return &httpServingClient{
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

func (c *httpServingClient) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	return &PredictResponse{ModelName: req.ModelName}, nil
}

func (c *httpServingClient) BatchPredict(ctx context.Context, reqs []*PredictRequest) ([]*PredictResponse, error) {
	return []*PredictResponse{}, nil
}

func (c *httpServingClient) StreamPredict(ctx context.Context, req *PredictRequest) (<-chan *PredictResponse, error) {
	return nil, nil
}

func (c *httpServingClient) GetModelStatus(ctx context.Context, modelName string) (*ServingModelStatus, error) {
	return nil, nil
}

func (c *httpServingClient) ListServingModels(ctx context.Context) ([]*ServingModelStatus, error) {
	return nil, nil
}

func (c *httpServingClient) Healthy(ctx context.Context) error {
	return nil
}

func (c *httpServingClient) Close() error {
	return nil
}

// MockServingClient
type MockServingClient struct {
	PredictFunc func(ctx context.Context, req *PredictRequest) (*PredictResponse, error)
}

func NewMockServingClient() *MockServingClient {
	return &MockServingClient{}
}

func (m *MockServingClient) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, req)
	}
	return &PredictResponse{}, nil
}

func (m *MockServingClient) BatchPredict(ctx context.Context, reqs []*PredictRequest) ([]*PredictResponse, error) { return nil, nil }
func (m *MockServingClient) StreamPredict(ctx context.Context, req *PredictRequest) (<-chan *PredictResponse, error) { return nil, nil }
func (m *MockServingClient) GetModelStatus(ctx context.Context, modelName string) (*ServingModelStatus, error) { return nil, nil }
func (m *MockServingClient) ListServingModels(ctx context.Context) ([]*ServingModelStatus, error) { return nil, nil }
func (m *MockServingClient) Healthy(ctx context.Context) error { return nil }
func (m *MockServingClient) Close() error { return nil }

//Personal.AI order the ending
