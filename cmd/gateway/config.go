package main

import "time"

// Config defines the gateway's environment variables.
type Config struct {
	Host       string `env:"GATEWAY_HOST,default=0.0.0.0"`
	Port       int    `env:"GATEWAY_PORT,default=8080"`
	GatewayURI string `env:"GATEWAY_URI,default=ws://localhost:8080/gateway"`

	// IdentityBaseURL is the accounts service the verifier calls.
	IdentityBaseURL string        `env:"IDENTITY_BASE_URL,required=true"`
	VerifierTimeout time.Duration `env:"VERIFIER_TIMEOUT,default=5s"`

	BufferSize       int           `env:"BUFFER_SIZE,default=64"`
	DeliveryTimeout  time.Duration `env:"DELIVERY_TIMEOUT,default=2s"`
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT,default=10s"`

	MetricInterval time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
}
