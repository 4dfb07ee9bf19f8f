package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/indicator"
	"github.com/rxtech-lab/argo-ta/internal/presentation"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/internal/version"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"go.uber.org/zap"
)

// computeRequest is the body of POST /api/v1/indicators. Indicator keys that
// are absent keep the server's configured values.
type computeRequest struct {
	Symbol     string                  `json:"symbol" validate:"required"`
	Bars       []types.Bar             `json:"bars"`
	Indicators config.IndicatorsConfig `json:"indicators" validate:"-"`
	Tail       int                     `json:"tail" validate:"gte=0"`
	Period     string                  `json:"period" validate:"omitempty,oneof=1mo 2mo 3mo 1y 5y"`
}

type indicatorResponse struct {
	Table    *types.IndicatorTable  `json:"table"`
	TDLabels []presentation.TDLabel `json:"td_labels,omitempty"`
	MALines  []string               `json:"ma_lines,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	req := computeRequest{Indicators: s.defaultIndicators()}

	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes())
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:  int(errors.ErrCodeInvalidParameter),
			})

			return
		}

		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request", err))

		return
	}

	if len(req.Bars) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeEmptySeries, "bars must not be empty"))

		return
	}

	series, err := types.NewSeries(req.Symbol, req.Bars)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.respondIndicators(w, series, req.Indicators, req.Tail, req.Period)
}

func (s *Server) handleSymbolIndicators(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.writeError(w, errors.New(errors.ErrCodeDataSourceUnavailable, "no data source configured"))

		return
	}

	symbol := mux.Vars(r)["symbol"]
	query := r.URL.Query()

	start, err := parseTimeParam(query.Get("start"), "start")
	if err != nil {
		s.writeError(w, err)

		return
	}

	end, err := parseTimeParam(query.Get("end"), "end")
	if err != nil {
		s.writeError(w, err)

		return
	}

	tail := 0
	if raw := query.Get("tail"); raw != "" {
		tail, err = strconv.Atoi(raw)
		if err != nil || tail < 0 {
			s.writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "tail must be a non-negative integer, got %q", raw))

			return
		}
	}

	period := query.Get("period")
	if period == "" && tail == 0 {
		period = s.chart.Period
	}

	series, err := s.source.LoadSeries(symbol, start, end)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.respondIndicators(w, series, s.defaultIndicators(), tail, period)
}

func (s *Server) handleListSymbols(w http.ResponseWriter, _ *http.Request) {
	if s.source == nil {
		s.writeError(w, errors.New(errors.ErrCodeDataSourceUnavailable, "no data source configured"))

		return
	}

	symbols, err := s.source.ListSymbols()
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]string{"symbols": symbols})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

// respondIndicators computes over the whole series and only then trims to
// the display window, so the first shown rows are warmed up.
func (s *Server) respondIndicators(w http.ResponseWriter, series types.Series, cfg config.IndicatorsConfig, tail int, period string) {
	if tail > 0 && period != "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "tail and period are mutually exclusive"))

		return
	}

	table, err := s.engine.Compute(series, cfg)
	if err != nil {
		s.writeError(w, err)

		return
	}

	switch {
	case period != "":
		table, err = presentation.DisplayWindow(table, period)
		if err != nil {
			s.writeError(w, err)

			return
		}
	case tail > 0:
		table = table.Tail(tail)
	}

	resp := indicatorResponse{Table: table, TDLabels: nil, MALines: s.maLines(table)}

	buy, sell := table.Counter(indicator.ColumnTDBuySetup), table.Counter(indicator.ColumnTDSellSetup)
	if s.chart.ShowTD && buy.IsSome() && sell.IsSome() {
		resp.TDLabels, err = presentation.TDLabels(buy.Unwrap(), sell.Unwrap())
		if err != nil {
			s.writeError(w, err)

			return
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// maLines names the configured chart MA columns present in table.
func (s *Server) maLines(table *types.IndicatorTable) []string {
	var lines []string

	for _, window := range s.chart.MALines {
		name := indicator.MAColumn(window)
		if table.Column(name).IsSome() {
			lines = append(lines, name)
		}
	}

	return lines
}

func (s *Server) maxBodyBytes() int64 {
	if s.cfg.MaxBodyBytes > 0 {
		return s.cfg.MaxBodyBytes
	}

	return defaultMaxBodyBytes
}

// defaultIndicators returns a copy the request decoder may overwrite.
func (s *Server) defaultIndicators() config.IndicatorsConfig {
	cfg := s.indicators
	cfg.MA.Windows = append([]int(nil), s.indicators.MA.Windows...)

	return cfg
}

func parseTimeParam(raw string, name string) (optional.Option[time.Time], error) {
	if raw == "" {
		return optional.None[time.Time](), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return optional.Some(t.UTC()), nil
		}
	}

	return optional.None[time.Time](), errors.Newf(errors.ErrCodeInvalidParameter, "%s must be RFC3339 or YYYY-MM-DD, got %q", name, raw)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}

// statusFor maps error codes onto HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeInvalidType,
		errors.ErrCodeInvalidPeriod,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidMultiplier,
		errors.ErrCodeInvalidPolicy,
		errors.ErrCodeInputShape,
		errors.ErrCodeOutOfOrder,
		errors.ErrCodeEmptySeries:
		return http.StatusBadRequest
	case errors.ErrCodeDataNotFound, errors.ErrCodeIndicatorNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDataSourceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
