// Package server exposes the indicator engine over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/datasource"
	"github.com/rxtech-lab/argo-ta/internal/engine"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/metrics"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"go.uber.org/zap"
)

// Route templates, also used as metric labels.
const (
	RouteCompute          = "/api/v1/indicators"
	RouteSymbols          = "/api/v1/symbols"
	RouteSymbolIndicators = "/api/v1/symbols/{symbol}/indicators"
	RouteHealth           = "/healthz"
	RouteMetrics          = "/metrics"
)

const defaultMaxBodyBytes int64 = 8 << 20

type Server struct {
	cfg        config.ServerConfig
	engine     engine.Engine
	source     datasource.DataSource
	indicators config.IndicatorsConfig
	chart      config.ChartConfig
	metrics    *metrics.Metrics
	logger     *logger.Logger
	validate   *validator.Validate
	router     *mux.Router

	httpServer *http.Server
	listener   net.Listener
}

type Option func(*Server)

// WithDataSource enables the symbol routes. Without one they answer 503.
func WithDataSource(source datasource.DataSource) Option {
	return func(s *Server) {
		s.source = source
	}
}

// WithIndicators sets the indicators used when a request does not override them.
func WithIndicators(cfg config.IndicatorsConfig) Option {
	return func(s *Server) {
		s.indicators = cfg
	}
}

// WithChart sets the display defaults: the period shown when a symbol request
// names neither tail nor period, whether TD labels are attached, and which MA
// lines a chart should draw.
func WithChart(cfg config.ChartConfig) Option {
	return func(s *Server) {
		s.chart = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Server) {
		s.logger = log
	}
}

func NewServer(cfg config.ServerConfig, eng engine.Engine, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		engine:     eng,
		source:     nil,
		indicators: config.DefaultIndicators(),
		chart:      config.ChartConfig{Period: "", ShowTD: true, MALines: nil},
		metrics:    nil,
		logger:     logger.NewNopLogger(),
		validate:   validator.New(),
		router:     nil,
		httpServer: nil,
		listener:   nil,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()

	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.instrument)

	router.HandleFunc(RouteCompute, s.handleCompute).Methods(http.MethodPost)
	router.HandleFunc(RouteSymbols, s.handleListSymbols).Methods(http.MethodGet)
	router.HandleFunc(RouteSymbolIndicators, s.handleSymbolIndicators).Methods(http.MethodGet)
	router.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet)

	if s.metrics != nil {
		router.Handle(RouteMetrics, s.metrics.Handler()).Methods(http.MethodGet)
	}

	return router
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
// An empty address or ":0" picks a free port.
func (s *Server) Start() error {
	address := s.cfg.Addr
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))

	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}
