package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/services"
	"salespulse/internal/validation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, pipeline config.PipelineConfig) *ForecastHandler {
	t.Helper()
	logger := testLogger()
	svc := services.NewForecastService(pipeline, logger, nil)
	return NewForecastHandler(svc, validation.NewFileValidator(logger), logger, 10<<20)
}

func defaultPipeline() config.PipelineConfig {
	return config.PipelineConfig{
		MinTrainingDays: 100,
		ForecastHorizon: 30,
		WarnHorizonDays: 365,
		NullPolicy:      "zero",
		TestFraction:    0.2,
	}
}

// salesCSV builds a dataset with the given number of consecutive days and
// a steady upward trend.
func salesCSV(days int) string {
	var buf bytes.Buffer
	buf.WriteString("order_date,sales,profit,product_name,customer_name,region,category\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		fmt.Fprintf(&buf, "%s,%d,%d,Widget,Acme,West,Hardware\n",
			d.Format("2006-01-02"), 1000+10*i, 100+i)
	}
	return buf.String()
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile(uploadFieldName, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func postForecast(t *testing.T, h *ForecastHandler, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestForecastEndpoint(t *testing.T) {
	h := newTestHandler(t, defaultPipeline())

	rec := postForecast(t, h, map[string]string{"periods": "7"},
		map[string]string{"sales.csv": salesCSV(150)})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Forecast, 7)
	assert.Equal(t, 150, result.Summary.Rows)
	for _, row := range result.Forecast {
		assert.GreaterOrEqual(t, row.PredictedSales, 0.0)
	}
}

func TestForecastEndpointMergesUploads(t *testing.T) {
	h := newTestHandler(t, defaultPipeline())

	full := salesCSV(150)
	// Split the dataset across two uploads sharing the schema line.
	lines := bytes.SplitAfterN([]byte(full), []byte("\n"), 80)
	header := string(lines[0])
	first := string(bytes.Join(lines[:79], nil))
	second := header + string(lines[79])

	rec := postForecast(t, h, nil, map[string]string{
		"part1.csv": first,
		"part2.csv": second,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestForecastEndpointErrors(t *testing.T) {
	h := newTestHandler(t, defaultPipeline())

	t.Run("no file part", func(t *testing.T) {
		rec := postForecast(t, h, map[string]string{"periods": "7"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_FILE")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		rec := postForecast(t, h, nil, map[string]string{"sales.txt": salesCSV(10)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing columns", func(t *testing.T) {
		rec := postForecast(t, h, nil, map[string]string{"sales.csv": "order_date,profit\n2024-01-01,5\n"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "SCHEMA_INVALID")
	})

	t.Run("insufficient data", func(t *testing.T) {
		rec := postForecast(t, h, nil, map[string]string{"sales.csv": salesCSV(40)})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "INSUFFICIENT_DATA")
	})

	t.Run("bad periods", func(t *testing.T) {
		rec := postForecast(t, h, map[string]string{"periods": "-3"},
			map[string]string{"sales.csv": salesCSV(150)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date filter", func(t *testing.T) {
		rec := postForecast(t, h, map[string]string{"from": "01/05/2024"},
			map[string]string{"sales.csv": salesCSV(150)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("plain"))
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSummaryEndpoint(t *testing.T) {
	h := newTestHandler(t, defaultPipeline())

	body, contentType := multipartBody(t, nil, map[string]string{"sales.csv": salesCSV(10)})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	http.HandlerFunc(h.Summary).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.SummaryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 10, result.Summary.Rows, "summary works below the training minimum")
	assert.Equal(t, 10, result.CleanReport.RowsIn)
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(testLogger(), "test")

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "true")
}
