package checkout

import "errors"

var (
	ErrNotConfigured = errors.New("checkout gateway is not configured")
	ErrGatewayError  = errors.New("checkout gateway error")
)
