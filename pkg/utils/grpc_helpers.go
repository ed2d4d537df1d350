package utils

import (
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// ListenGRPC starts s on listenPort. It mirrors ListenHTTP: an error channel,
// a force closer, a graceful closer and any bind error.
func ListenGRPC(s *grpc.Server, listenPort int, log logger.Logger) (chan error, func(), func(), error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", listenPort)) //nolint:noctx // gRPC server manages listener lifecycle
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to listen on port %d: %w", listenPort, err)
	}

	errorChannel := make(chan error, 1)
	go func() {
		defer close(errorChannel)
		log.Info("Starting gRPC server", logger.StringField("address", lis.Addr().String()))
		if err := s.Serve(lis); err != nil {
			errorChannel <- err
		}
	}()

	gracefulCloser := func() {
		log.Info("Gracefully stopping gRPC server")
		s.GracefulStop()
	}
	closer := func() {
		log.Info("Stopping gRPC server")
		s.Stop()
	}
	return errorChannel, closer, gracefulCloser, nil
}
