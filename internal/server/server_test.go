package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/engine"
	"github.com/rxtech-lab/argo-ta/internal/metrics"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/internal/version"
	"github.com/rxtech-lab/argo-ta/mocks"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	source  *mocks.MockDataSource
	metrics *metrics.Metrics
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockDataSource(suite.ctrl)
	suite.metrics = metrics.NewMetrics(nil)
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ServerTestSuite) newServer(eng engine.Engine) *Server {
	return NewServer(config.Default().Server, eng,
		WithDataSource(suite.source),
		WithMetrics(suite.metrics),
	)
}

func (suite *ServerTestSuite) bars(n int) []types.Bar {
	cfg := mocks.DefaultConfig()
	cfg.Count = n

	return mocks.NewDataGenerator(42).Generate(cfg)
}

func (suite *ServerTestSuite) do(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

type decodedResponse struct {
	Table struct {
		Symbol   string                `json:"symbol"`
		Times    []time.Time           `json:"times"`
		Columns  map[string][]*float64 `json:"columns"`
		Counters map[string][]int      `json:"counters"`
	} `json:"table"`
	TDLabels []struct {
		Index int    `json:"index"`
		Side  string `json:"side"`
		Count int    `json:"count"`
	} `json:"td_labels"`
	MALines []string `json:"ma_lines"`
}

func (suite *ServerTestSuite) TestComputeWithRealEngine() {
	s := suite.newServer(engine.NewEngineV1())

	body, err := json.Marshal(map[string]any{
		"symbol": "2330.TW",
		"bars":   suite.bars(40),
		"tail":   10,
	})
	suite.Require().NoError(err)

	rec := suite.do(s, http.MethodPost, RouteCompute, body)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp decodedResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("2330.TW", resp.Table.Symbol)
	suite.Len(resp.Table.Times, 10)
	suite.Len(resp.Table.Columns["ma_5"], 10)
	suite.NotNil(resp.Table.Columns["ma_20"][0], "window is trimmed after computing")
	suite.Len(resp.Table.Counters["td_buy_setup"], 10)

	for _, label := range resp.TDLabels {
		suite.GreaterOrEqual(label.Count, 1)
		suite.LessOrEqual(label.Count, 9)
	}
}

func (suite *ServerTestSuite) TestComputeOverridesIndicators() {
	s := suite.newServer(engine.NewEngineV1())

	body := []byte(`{"symbol":"AAPL","bars":[
		{"time":"2024-01-02T00:00:00Z","open":1,"high":1,"low":1,"close":1,"volume":1},
		{"time":"2024-01-03T00:00:00Z","open":2,"high":2,"low":2,"close":2,"volume":1},
		{"time":"2024-01-04T00:00:00Z","open":3,"high":3,"low":3,"close":3,"volume":1}
	],"indicators":{"ma":{"windows":[3]},"bollinger":{"enabled":false},"rsi":{"enabled":false},
	"macd":{"enabled":false},"kd":{"enabled":false},"td":{"enabled":false}}}`)

	rec := suite.do(s, http.MethodPost, RouteCompute, body)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp decodedResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Len(resp.Table.Columns, 1)
	suite.Nil(resp.Table.Columns["ma_3"][1])
	suite.Require().NotNil(resp.Table.Columns["ma_3"][2])
	suite.InDelta(2.0, *resp.Table.Columns["ma_3"][2], 1e-12)
	suite.Empty(resp.TDLabels)

	// server defaults are untouched by the override
	suite.Equal([]int{5, 10, 20, 60}, s.indicators.MA.Windows)
}

func (suite *ServerTestSuite) TestComputeRejectsBadRequests() {
	s := suite.newServer(mocks.NewMockEngine(suite.ctrl))

	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{name: "malformed json", body: `{`, code: errors.ErrCodeInvalidParameter},
		{name: "missing symbol", body: `{"bars":[]}`, code: errors.ErrCodeInvalidParameter},
		{name: "empty bars", body: `{"symbol":"A","bars":[]}`, code: errors.ErrCodeEmptySeries},
		{
			name: "unordered bars",
			body: `{"symbol":"A","bars":[{"time":"2024-01-03T00:00:00Z"},{"time":"2024-01-02T00:00:00Z"}]}`,
			code: errors.ErrCodeOutOfOrder,
		},
		{name: "bad period", body: `{"symbol":"A","bars":[],"period":"2y"}`, code: errors.ErrCodeInvalidParameter},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			rec := suite.do(s, http.MethodPost, RouteCompute, []byte(tc.body))
			suite.Equal(http.StatusBadRequest, rec.Code)

			var resp errorResponse
			suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			suite.Equal(int(tc.code), resp.Code)
		})
	}
}

func (suite *ServerTestSuite) TestComputeEngineFailure() {
	eng := mocks.NewMockEngine(suite.ctrl)
	eng.EXPECT().Compute(gomock.Any(), gomock.Any()).
		Return(nil, errors.New(errors.ErrCodeIndicatorCalculation, "boom"))

	s := suite.newServer(eng)
	body, err := json.Marshal(map[string]any{"symbol": "A", "bars": suite.bars(5)})
	suite.Require().NoError(err)

	rec := suite.do(s, http.MethodPost, RouteCompute, body)
	suite.Equal(http.StatusInternalServerError, rec.Code)
}

func (suite *ServerTestSuite) TestSymbolIndicators() {
	series, err := types.NewSeries("2330.TW", suite.bars(60))
	suite.Require().NoError(err)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	suite.source.EXPECT().
		LoadSeries("2330.TW", optional.Some(start), optional.None[time.Time]()).
		Return(series, nil)

	s := suite.newServer(engine.NewEngineV1())
	rec := suite.do(s, http.MethodGet, "/api/v1/symbols/2330.TW/indicators?start=2024-01-02&tail=5", nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp decodedResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Len(resp.Table.Times, 5)
	suite.True(series.Times()[55].Equal(resp.Table.Times[0]))
}

func (suite *ServerTestSuite) TestSymbolIndicatorsPeriod() {
	series, err := types.NewSeries("AAPL", suite.bars(100))
	suite.Require().NoError(err)

	suite.source.EXPECT().LoadSeries("AAPL", gomock.Any(), gomock.Any()).Return(series, nil)

	s := suite.newServer(engine.NewEngineV1())
	rec := suite.do(s, http.MethodGet, "/api/v1/symbols/AAPL/indicators?period=1mo", nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp decodedResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Len(resp.Table.Times, 21)
}

func (suite *ServerTestSuite) TestSymbolIndicatorsChartDefaults() {
	series, err := types.NewSeries("AAPL", suite.bars(100))
	suite.Require().NoError(err)

	suite.source.EXPECT().LoadSeries("AAPL", gomock.Any(), gomock.Any()).Return(series, nil).Times(2)

	s := NewServer(config.Default().Server, engine.NewEngineV1(),
		WithDataSource(suite.source),
		WithChart(config.ChartConfig{Period: "1mo", ShowTD: false, MALines: []int{5, 7}}),
	)

	rec := suite.do(s, http.MethodGet, "/api/v1/symbols/AAPL/indicators", nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp decodedResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Len(resp.Table.Times, 21)
	suite.Empty(resp.TDLabels)
	suite.NotEmpty(resp.Table.Counters["td_buy_setup"])
	suite.Equal([]string{"ma_5"}, resp.MALines)

	// an explicit tail overrides the chart period
	rec = suite.do(s, http.MethodGet, "/api/v1/symbols/AAPL/indicators?tail=3", nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	resp = decodedResponse{}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Len(resp.Table.Times, 3)
}

func (suite *ServerTestSuite) TestComputeBodyTooLarge() {
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 256

	s := NewServer(cfg, mocks.NewMockEngine(suite.ctrl))

	body, err := json.Marshal(map[string]any{"symbol": "A", "bars": suite.bars(50)})
	suite.Require().NoError(err)
	suite.Greater(len(body), 256)

	rec := suite.do(s, http.MethodPost, RouteCompute, body)
	suite.Equal(http.StatusRequestEntityTooLarge, rec.Code)

	var resp errorResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal(int(errors.ErrCodeInvalidParameter), resp.Code)
	suite.Contains(resp.Error, "256")
}

func (suite *ServerTestSuite) TestSymbolIndicatorsErrors() {
	s := suite.newServer(mocks.NewMockEngine(suite.ctrl))

	rec := suite.do(s, http.MethodGet, "/api/v1/symbols/A/indicators?start=yesterday", nil)
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(s, http.MethodGet, "/api/v1/symbols/A/indicators?tail=-1", nil)
	suite.Equal(http.StatusBadRequest, rec.Code)

	suite.source.EXPECT().LoadSeries("MISSING", gomock.Any(), gomock.Any()).
		Return(types.Series{}, errors.New(errors.ErrCodeDataNotFound, "no data"))

	rec = suite.do(s, http.MethodGet, "/api/v1/symbols/MISSING/indicators", nil)
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *ServerTestSuite) TestListSymbols() {
	suite.source.EXPECT().ListSymbols().Return([]string{"2330.TW", "AAPL"}, nil)

	s := suite.newServer(mocks.NewMockEngine(suite.ctrl))
	rec := suite.do(s, http.MethodGet, RouteSymbols, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"symbols":["2330.TW","AAPL"]}`, rec.Body.String())
}

func (suite *ServerTestSuite) TestNoDataSource() {
	s := NewServer(config.Default().Server, mocks.NewMockEngine(suite.ctrl))

	rec := suite.do(s, http.MethodGet, RouteSymbols, nil)
	suite.Equal(http.StatusServiceUnavailable, rec.Code)

	rec = suite.do(s, http.MethodGet, "/api/v1/symbols/A/indicators", nil)
	suite.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (suite *ServerTestSuite) TestHealthAndMetrics() {
	s := suite.newServer(mocks.NewMockEngine(suite.ctrl))

	rec := suite.do(s, http.MethodGet, RouteHealth, nil)
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"status":"ok","version":"`+version.GetVersion()+`"}`, rec.Body.String())

	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.HTTPRequestsTotal.WithLabelValues(RouteHealth, "200")))

	rec = suite.do(s, http.MethodGet, RouteMetrics, nil)
	suite.Equal(http.StatusOK, rec.Code)
	suite.True(strings.Contains(rec.Body.String(), "ta_http_requests_total"))
}

func (suite *ServerTestSuite) TestStartStop() {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"

	s := NewServer(cfg, mocks.NewMockEngine(suite.ctrl))
	suite.Require().NoError(s.Start())
	suite.NotEmpty(s.Address())

	resp, err := http.Get("http://" + s.Address() + RouteHealth)
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	suite.NoError(s.Stop(ctx))
}
