/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"studybud/internal/metrics"
	"studybud/internal/nlog"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Name the site registers itself under in the gRPC health service, next to the overall "" status
const HealthServiceName = "studybud"

type IptConfig struct {
	ServerPort     uint16
	ReadTimeout    int64  // Seconds
	WriteTimeout   int64  // Seconds
	GRPCHealthPort uint16 // Zero disables the gRPC health service
}

// Anything that can tell whether storage answers
type Pinger interface {
	Ping(ctx context.Context) error
}

type InputManager struct { // Manages HTTP input of the site, and its health reporting
	running atomic.Bool
	paused  atomic.Bool

	logger nlog.Logger

	router  *mux.Router
	storage Pinger
	metrics *metrics.Metrics

	server       *http.Server
	httpListener net.Listener

	grpcServer   *grpc.Server
	grpcListener net.Listener
	health       *health.Server

	serveErr chan error
}

// Creates the manager of the given site router. m may be nil, which leaves /metrics out.
func NewInputManager(router *mux.Router, storage Pinger, m *metrics.Metrics, logger nlog.Logger) *InputManager {
	return &InputManager{
		logger:   logger,
		router:   router,
		storage:  storage,
		metrics:  m,
		health:   health.NewServer(),
		serveErr: make(chan error, 2),
	}
}

func (i *InputManager) IsRunning() bool {
	return i.running.Load()
}

func (i *InputManager) Logf(format string, a ...any) {
	i.logger.Logf(format, a...)
}

func (i *InputManager) SetPause(paused bool) {
	i.paused.Store(paused)
}

func (i *InputManager) IsPaused() bool {
	return i.paused.Load()
}

// PauseMiddleware answers 503 while the manager is paused, which it is while shutting down
func (i *InputManager) PauseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.IsPaused() {
			w.Header().Set("Retry-After", "5")
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable) // 503
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler is the site router with the operational endpoints added
func (i *InputManager) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", i.Healthz).Methods("GET")
	if i.metrics != nil {
		r.Handle("/metrics", i.metrics.Handler()).Methods("GET")
	}
	r.PathPrefix("/").Handler(i.router)
	return i.PauseMiddleware(r)
}

type healthReport struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Healthz reports liveness and whether the database answers
func (i *InputManager) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if err := i.storage.Ping(ctx); err != nil {
		i.Logf("ERROR: Health check failed {%v}", err)
		report = healthReport{Status: "unavailable", Database: err.Error()}
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}

// Start binds the listeners and serves in the background. Errors while serving show up in Err.
func (i *InputManager) Start(cfg *IptConfig) error {
	if i.logger == nil || i.router == nil || i.storage == nil {
		return fmt.Errorf("The Input manager is not ready... Missing components")
	}

	httpListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.ServerPort))
	if err != nil {
		return err
	}
	i.httpListener = httpListener

	i.server = &http.Server{
		Handler:        i.Handler(),
		ReadTimeout:    time.Duration(cfg.ReadTimeout * int64(time.Second)),
		WriteTimeout:   time.Duration(cfg.WriteTimeout * int64(time.Second)),
		MaxHeaderBytes: 1 << 20,
	}

	if cfg.GRPCHealthPort != 0 {
		grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCHealthPort))
		if err != nil {
			httpListener.Close()
			return err
		}
		i.grpcListener = grpcListener
		i.grpcServer = grpc.NewServer()
		healthpb.RegisterHealthServer(i.grpcServer, i.health)

		go func() {
			if err := i.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				i.Logf("FATAL: gRPC health server error{%v}", err)
				i.serveErr <- err
			}
		}()
		i.Logf("gRPC health service started on {%s}", grpcListener.Addr())
	}

	go func() {
		if err := i.server.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			i.Logf("FATAL: HTTP Server error{%v}", err)
			i.serveErr <- err
		}
	}()

	i.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	i.health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)
	i.running.Store(true)
	i.Logf("Http server started on {%s}", httpListener.Addr())
	return nil
}

// Err delivers the first error that stopped a server
func (i *InputManager) Err() <-chan error {
	return i.serveErr
}

// Address the HTTP server listens on, nil before Start
func (i *InputManager) Addr() net.Addr {
	if i.httpListener == nil {
		return nil
	}
	return i.httpListener.Addr()
}

// Address of the gRPC health service, nil when disabled
func (i *InputManager) GRPCAddr() net.Addr {
	if i.grpcListener == nil {
		return nil
	}
	return i.grpcListener.Addr()
}

// Shutdown refuses new requests, reports NOT_SERVING and waits for in-flight requests until ctx expires
func (i *InputManager) Shutdown(ctx context.Context) error {
	if !i.running.Load() {
		return nil
	}
	i.Logf("Shutting down...")

	i.SetPause(true)
	i.health.Shutdown()

	err := i.server.Shutdown(ctx)
	if err != nil {
		i.Logf("ERROR: shutdown failed {%v}", err)
	}

	if i.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			i.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			i.grpcServer.Stop()
		}
	}

	i.running.Store(false)
	return err
}
