// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the ledger to dapps over HTTP: a JSON REST interface,
// a server-sent event stream and gRPC health and reflection endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"connectrpc.com/grpcreflect"
	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	DefaultListenAddress = ":8180"

	// ServiceName is reported by the gRPC health checker
	ServiceName = "surety.v1.Ledger"

	requestTimeout = 30 * time.Second
)

type ApiConfig struct {
	Logger        *slog.Logger
	LedgerState   *ledger.LedgerState
	Database      *database.Database
	EventBus      *event.EventBus
	ListenAddress string
}

type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	checker    *grpchealth.StaticChecker
	httpServer *http.Server
	mu         sync.Mutex
}

func New(cfg ApiConfig) *Api {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Api{
		config:  cfg,
		logger:  cfg.Logger.With("component", "api"),
		checker: grpchealth.NewStaticChecker(ServiceName),
	}
}

// Handler returns the HTTP handler for every endpoint. Plain-text HTTP/2 is
// accepted so gRPC clients can reach the health service without TLS.
func (a *Api) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	compress1KB := connect.WithCompressMinBytes(1024)
	r.Mount(grpchealth.NewHandler(a.checker, compress1KB))
	reflector := grpcreflect.NewStaticReflector(grpchealth.HealthV1ServiceName)
	r.Mount(grpcreflect.NewHandlerV1(reflector, compress1KB))
	r.Mount(grpcreflect.NewHandlerV1Alpha(reflector, compress1KB))

	r.Get("/health", a.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(callerContext)
		// Event streams are long-lived and skip the request timeout
		r.Get("/events", a.handleEvents)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			a.routes(r)
		})
	})
	return h2c.NewHandler(r, &http2.Server{})
}

// Start binds the listener and serves in the background until ctx is done
// or Stop is called
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	if a.config.LedgerState == nil {
		a.mu.Unlock()
		return errors.New("no ledger state provided")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("API server error", "error", err)
		}
	}()
	a.checker.SetStatus(ServiceName, grpchealth.StatusServing)
	a.logger.Info("API listener started on " + ln.Addr().String())

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	a.checker.SetStatus(ServiceName, grpchealth.StatusNotServing)
	a.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

func (a *Api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug(
			"handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
