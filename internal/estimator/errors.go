package estimator

import "errors"

var (
	// ErrInvalidArtifact indicates the coefficients file could not be used
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrConnectionFailed indicates the remote model server is unreachable
	ErrConnectionFailed = errors.New("model server connection failed")

	// ErrInvalidResponse indicates the remote model answered with something unusable
	ErrInvalidResponse = errors.New("invalid response from model server")
)
