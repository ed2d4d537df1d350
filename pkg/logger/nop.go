package logger

import (
	"context"

	"google.golang.org/grpc"
)

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Info(string, ...LogField)  {}
func (nopLogger) Error(string, ...LogField) {}
func (nopLogger) Debug(string, ...LogField) {}
func (nopLogger) Warn(string, ...LogField)  {}

func (n nopLogger) WithFields(...LogField) Logger { return n }

func (n nopLogger) WithCorrelationID(string) Logger { return n }

func (nopLogger) GrpcRequestsInterceptor(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	return handler(ctx, req)
}
