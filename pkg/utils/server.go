package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// ShutdownTimeout bounds graceful HTTP shutdown.
const ShutdownTimeout = 10 * time.Second

// ListenHTTP binds srv.Addr and serves in the background. Bind failures are
// returned synchronously so a busy port aborts start-up before anything else runs.
// The error channel receives the serve error, if any, and is closed when serving stops.
func ListenHTTP(srv *http.Server, log logger.Logger) (chan error, func(), func(), error) {
	lis, err := net.Listen("tcp", srv.Addr) //nolint:noctx // server owns listener lifecycle
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	errorChannel := make(chan error, 1)
	go func() {
		defer close(errorChannel)
		log.Info("Starting HTTP server", logger.StringField("address", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChannel <- err
		}
	}()

	closer := func() {
		log.Info("Forcefully closing HTTP server", logger.StringField("address", srv.Addr))
		if err := srv.Close(); err != nil {
			log.Error("Error during forced shutdown", logger.ErrorField(err))
		}
	}
	gracefulCloser := func() {
		log.Info("Gracefully closing HTTP server", logger.StringField("address", srv.Addr))
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Error during graceful shutdown", logger.ErrorField(err))
		}
	}
	return errorChannel, closer, gracefulCloser, nil
}
