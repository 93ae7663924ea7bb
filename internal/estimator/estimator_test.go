package estimator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/models"
)

type stubModel struct {
	value, mae float64
	err        error
	calls      atomic.Int32
}

func (s *stubModel) Predict(ctx context.Context, features models.FeatureVector) (float64, float64, error) {
	s.calls.Add(1)
	return s.value, s.mae, s.err
}

func featureSet() *models.FeatureSet {
	return &models.FeatureSet{
		Vector: models.FeatureVector{
			"PTS_L5":  24.0,
			"PTS_L10": 23.0,
			"IS_HOME": 1,
		},
	}
}

func TestEstimatorContract(t *testing.T) {
	tests := []struct {
		name      string
		model     *stubModel
		wantErr   bool
		wantValue float64
		wantMAE   float64
	}{
		{name: "passes through", model: &stubModel{value: 24.5, mae: 4.2}, wantValue: 24.5, wantMAE: 4.2},
		{name: "clamps negative prediction", model: &stubModel{value: -1.5, mae: 3.0}, wantValue: 0, wantMAE: 3.0},
		{name: "zero mae allowed", model: &stubModel{value: 10, mae: 0}, wantValue: 10, wantMAE: 0},
		{name: "model error", model: &stubModel{err: errors.New("boom")}, wantErr: true},
		{name: "nan prediction", model: &stubModel{value: math.NaN(), mae: 1}, wantErr: true},
		{name: "infinite prediction", model: &stubModel{value: math.Inf(1), mae: 1}, wantErr: true},
		{name: "negative mae", model: &stubModel{value: 10, mae: -1}, wantErr: true},
		{name: "nan mae", model: &stubModel{value: 10, mae: math.NaN()}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := New(tt.model, "stub", nil)
			got, err := est.Estimate(context.Background(), featureSet())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrModelUnavailable)
				assert.True(t, models.IsRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, got.PredictedPoints)
			assert.Equal(t, tt.wantMAE, got.ModelMAE)
		})
	}
}

func TestEstimatorRejectsEmptyVector(t *testing.T) {
	model := &stubModel{value: 1, mae: 1}
	est := New(model, "stub", nil)

	_, err := est.Estimate(context.Background(), &models.FeatureSet{})
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.Equal(t, int32(0), model.calls.Load())
}

func TestEstimatorLogsModelCalls(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	est := New(NewCachedModel(&stubModel{value: 20, mae: 4}, time.Minute), "linear", logger.NewModelLogger(base))

	_, err := est.Estimate(context.Background(), featureSet())
	require.NoError(t, err)
	_, err = est.Estimate(context.Background(), featureSet())
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, false, entries[0].Data["cache_hit"])
	assert.Equal(t, true, entries[1].Data["cache_hit"])
	assert.Equal(t, "model", entries[1].Data["component"])
}

func TestEstimatorLogsFailures(t *testing.T) {
	base, hook := test.NewNullLogger()
	est := New(&stubModel{err: errors.New("backend down")}, "http", logger.NewModelLogger(base))

	_, err := est.Estimate(context.Background(), featureSet())
	require.Error(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "http", hook.LastEntry().Data["backend"])
}

func writeArtifact(t *testing.T, artifact any) string {
	t.Helper()
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLinearModel(t *testing.T) {
	path := writeArtifact(t, LinearArtifact{
		Version:   "test-1",
		Intercept: 2,
		Coefficients: map[string]float64{
			"PTS_L5":  0.5,
			"PTS_L10": 0.25,
			"MISSING": 10,
		},
		MAE: 4.5,
	})

	model, err := LoadLinearModel(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", model.Version())

	value, mae, err := model.Predict(context.Background(), featureSet().Vector)
	require.NoError(t, err)
	assert.InDelta(t, 2+12+5.75, value, 1e-9)
	assert.Equal(t, 4.5, mae)
}

func TestLinearModelRejectsBadArtifacts(t *testing.T) {
	_, err := LoadLinearModel(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = LoadLinearModel(path)
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = NewLinearModel(LinearArtifact{MAE: 1})
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = NewLinearModel(LinearArtifact{Coefficients: map[string]float64{"PTS_L5": 1}, MAE: -2})
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestHTTPModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predict", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		var req httpPredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]float64{
			"predicted_points": req.Features["PTS_L5"] + 1,
			"mae":              4.1,
		})
	}))
	defer server.Close()

	cfg := DefaultHTTPModelConfig(server.URL + "/")
	cfg.APIKey = "secret"
	model := NewHTTPModel(cfg)
	defer model.Close()

	value, mae, err := model.Predict(context.Background(), featureSet().Vector)
	require.NoError(t, err)
	assert.Equal(t, 25.0, value)
	assert.Equal(t, 4.1, mae)
}

func TestHTTPModelRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"predicted_points": 18.5, "mae": 3.9}`))
	}))
	defer server.Close()

	cfg := DefaultHTTPModelConfig(server.URL)
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	model := NewHTTPModel(cfg)

	value, _, err := model.Predict(context.Background(), featureSet().Vector)
	require.NoError(t, err)
	assert.Equal(t, 18.5, value)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestHTTPModelFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "client error is final", status: http.StatusBadRequest, body: "bad features", wantErr: ErrInvalidResponse},
		{name: "missing fields", status: http.StatusOK, body: `{"predicted_points": 10}`, wantErr: ErrInvalidResponse},
		{name: "garbage body", status: http.StatusOK, body: `nope`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			model := NewHTTPModel(DefaultHTTPModelConfig(server.URL))
			_, _, err := model.Predict(context.Background(), featureSet().Vector)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int32(1), attempts.Load())
		})
	}
}

func TestHTTPModelUnreachable(t *testing.T) {
	cfg := DefaultHTTPModelConfig("http://127.0.0.1:1")
	cfg.MaxRetries = 0
	model := NewHTTPModel(cfg)

	_, err := New(model, BackendHTTP, nil).Estimate(context.Background(), featureSet())
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

// startModelServer serves PredictMethod with handler on a loopback port
func startModelServer(t *testing.T, handler func(*structpb.Struct) (*structpb.Struct, error)) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	desc := grpc.ServiceDesc{
		ServiceName: "sharpeye.model.v1.PointModel",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Predict",
			Handler: func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				in := new(structpb.Struct)
				if err := dec(in); err != nil {
					return nil, err
				}
				return handler(in)
			},
		}},
	}

	server := grpc.NewServer()
	server.RegisterService(&desc, struct{}{})
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	return lis.Addr().String()
}

func TestGRPCModel(t *testing.T) {
	addr := startModelServer(t, func(in *structpb.Struct) (*structpb.Struct, error) {
		features := in.GetFields()["features"].GetStructValue().GetFields()
		return structpb.NewStruct(map[string]any{
			"predicted_points": features["PTS_L10"].GetNumberValue() + 0.5,
			"mae":              4.4,
		})
	})

	model, err := NewGRPCModel(addr, 2*time.Second)
	require.NoError(t, err)
	defer model.Close()

	value, mae, err := model.Predict(context.Background(), featureSet().Vector)
	require.NoError(t, err)
	assert.Equal(t, 23.5, value)
	assert.Equal(t, 4.4, mae)
}

func TestGRPCModelErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		addr := startModelServer(t, func(*structpb.Struct) (*structpb.Struct, error) {
			return nil, status.Error(codes.Unavailable, "warming up")
		})
		model, err := NewGRPCModel(addr, time.Second)
		require.NoError(t, err)
		defer model.Close()

		_, _, err = model.Predict(context.Background(), featureSet().Vector)
		assert.ErrorIs(t, err, ErrConnectionFailed)
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})

	t.Run("missing mae", func(t *testing.T) {
		addr := startModelServer(t, func(*structpb.Struct) (*structpb.Struct, error) {
			return structpb.NewStruct(map[string]any{"predicted_points": 12.0})
		})
		model, err := NewGRPCModel(addr, time.Second)
		require.NoError(t, err)
		defer model.Close()

		_, _, err = model.Predict(context.Background(), featureSet().Vector)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestCachedModel(t *testing.T) {
	next := &stubModel{value: 21, mae: 4}
	cached := NewCachedModel(next, time.Minute)

	for i := 0; i < 3; i++ {
		value, mae, err := cached.Predict(context.Background(), featureSet().Vector)
		require.NoError(t, err)
		assert.Equal(t, 21.0, value)
		assert.Equal(t, 4.0, mae)
	}
	assert.Equal(t, int32(1), next.calls.Load())

	other := featureSet().Vector
	other["IS_HOME"] = 0
	_, _, err := cached.Predict(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())

	hits, misses, ratio := cached.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(2), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
	assert.Equal(t, 2, cached.ItemCount())
}

func TestCachedModelDoesNotCacheErrors(t *testing.T) {
	next := &stubModel{err: errors.New("down")}
	cached := NewCachedModel(next, time.Minute)

	_, _, err := cached.Predict(context.Background(), featureSet().Vector)
	require.Error(t, err)
	_, _, err = cached.Predict(context.Background(), featureSet().Vector)
	require.Error(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, 0, cached.ItemCount())
}

func TestVectorKeyIsOrderIndependent(t *testing.T) {
	a := models.FeatureVector{"A": 1, "B": 2, "C": 3}
	b := models.FeatureVector{}
	b["C"] = 3
	b["A"] = 1
	b["B"] = 2

	assert.Equal(t, VectorKey(a), VectorKey(b))
	b["B"] = 2.0000001
	assert.NotEqual(t, VectorKey(a), VectorKey(b))
}

func TestNewFromConfig(t *testing.T) {
	path := writeArtifact(t, LinearArtifact{
		Coefficients: map[string]float64{"PTS_L5": 1},
		MAE:          4,
	})

	est, err := NewFromConfig(config.ModelConfig{
		Backend:         BackendLinear,
		ArtifactPath:    path,
		TimeoutSeconds:  1,
		CacheEnabled:    true,
		CacheTTLSeconds: 60,
	}, nil)
	require.NoError(t, err)
	defer est.Close()
	assert.Equal(t, BackendLinear, est.Backend())

	got, err := est.Estimate(context.Background(), featureSet())
	require.NoError(t, err)
	assert.Equal(t, 24.0, got.PredictedPoints)

	_, err = NewFromConfig(config.ModelConfig{Backend: "tensorflow", TimeoutSeconds: 1}, nil)
	assert.Error(t, err)
}

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) GetActive(ctx context.Context, name string) (*models.ModelArtifact, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModelArtifact), args.Error(1)
}

func TestNewFromRegistry(t *testing.T) {
	cfg := config.ModelConfig{Backend: BackendLinear, ArtifactName: "points", TimeoutSeconds: 1}

	t.Run("active artifact", func(t *testing.T) {
		reg := new(MockRegistry)
		reg.On("GetActive", mock.Anything, "points").Return(&models.ModelArtifact{
			Name:      "points",
			Version:   "2025.01",
			ModelType: BackendLinear,
			Artifact:  []byte(`{"intercept": 1, "coefficients": {"PTS_L5": 1}}`),
			Metrics:   []byte(`{"mae": 4.5}`),
		}, nil)

		est, err := NewFromRegistry(context.Background(), cfg, reg, nil)
		require.NoError(t, err)

		got, err := est.Estimate(context.Background(), featureSet())
		require.NoError(t, err)
		assert.Equal(t, 25.0, got.PredictedPoints)
		assert.Equal(t, 4.5, got.ModelMAE)
		reg.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		reg := new(MockRegistry)
		reg.On("GetActive", mock.Anything, "points").Return(nil, models.ErrArtifactNotFound)

		_, err := NewFromRegistry(context.Background(), cfg, reg, nil)
		assert.ErrorIs(t, err, models.ErrArtifactNotFound)
	})

	t.Run("wrong model type", func(t *testing.T) {
		reg := new(MockRegistry)
		reg.On("GetActive", mock.Anything, "points").Return(&models.ModelArtifact{
			Name: "points", Version: "1", ModelType: "xgboost", Artifact: []byte(`{}`),
		}, nil)

		_, err := NewFromRegistry(context.Background(), cfg, reg, nil)
		assert.ErrorIs(t, err, ErrInvalidArtifact)
	})

	t.Run("non linear backend", func(t *testing.T) {
		_, err := NewFromRegistry(context.Background(), config.ModelConfig{Backend: BackendHTTP}, new(MockRegistry), nil)
		assert.Error(t, err)
	})
}
