package poller

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"nba-game-poller/config"
)

// ClientOptions builds Temporal client options from cfg. Cloud hosts get TLS
// and API key credentials; local dev servers get neither.
func ClientOptions(cfg config.Config, logger *slog.Logger) (client.Options, error) {
	if cfg.TemporalHost == "" {
		return client.Options{}, errors.New("TEMPORAL_HOST is not set")
	}
	if cfg.TemporalNamespace == "" {
		return client.Options{}, errors.New("TEMPORAL_NAMESPACE is not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
		Logger:    tlog.NewStructuredLogger(logger),
	}

	opts.ConnectionOptions = client.ConnectionOptions{
		TLS: &tls.Config{},
		DialOptions: []grpc.DialOption{
			grpc.WithUnaryInterceptor(namespaceInterceptor(cfg.TemporalNamespace)),
		},
	}

	if cfg.IsLocalTemporal() {
		opts.ConnectionOptions.TLS = nil
		return opts, nil
	}
	if cfg.TemporalAPIKey == "" {
		return client.Options{}, errors.New("TEMPORAL_API_KEY is not set")
	}
	opts.Credentials = client.NewAPIKeyStaticCredentials(cfg.TemporalAPIKey)
	return opts, nil
}

func namespaceInterceptor(namespace string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(
			metadata.AppendToOutgoingContext(ctx, "temporal-namespace", namespace),
			method,
			req,
			reply,
			cc,
			opts...,
		)
	}
}
