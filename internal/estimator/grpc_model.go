package estimator

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/sharpeye/internal/models"
)

// PredictMethod is the unary method served by the remote model server.
// Request and response are google.protobuf.Struct messages: the request holds
// a "features" object, the response "predicted_points" and "mae" numbers.
const PredictMethod = "/sharpeye.model.v1.PointModel/Predict"

// GRPCModel calls a remote model server over gRPC
type GRPCModel struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewGRPCModel creates a client for address. The connection is established
// lazily; extra options are appended after the defaults.
func NewGRPCModel(address string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCModel, error) {
	connectParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  200 * time.Millisecond,
			Multiplier: 1.6,
			Jitter:     0.2,
			MaxDelay:   5 * time.Second,
		},
		MinConnectTimeout: 5 * time.Second,
	}

	keepAlive := keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             10 * time.Second,
		PermitWithoutStream: true,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(connectParams),
		grpc.WithKeepaliveParams(keepAlive),
	}, opts...)

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &GRPCModel{conn: conn, timeout: timeout}, nil
}

// Predict implements Model
func (m *GRPCModel) Predict(ctx context.Context, features models.FeatureVector) (float64, float64, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	values := make(map[string]any, len(features))
	for name, v := range features {
		values[name] = v
	}
	req, err := structpb.NewStruct(map[string]any{"features": values})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode features: %w", err)
	}

	resp := new(structpb.Struct)
	if err := m.conn.Invoke(ctx, PredictMethod, req, resp); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	value, ok := numberField(resp, "predicted_points")
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing predicted_points", ErrInvalidResponse)
	}
	mae, ok := numberField(resp, "mae")
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing mae", ErrInvalidResponse)
	}
	return value, mae, nil
}

// Close tears down the connection
func (m *GRPCModel) Close() error {
	return m.conn.Close()
}

func numberField(s *structpb.Struct, name string) (float64, bool) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return n.NumberValue, true
}
