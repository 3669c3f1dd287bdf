package http

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/dataset"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/services"
	"salespulse/internal/validation"
)

const uploadFieldName = "file"

// ForecastHandler handles dataset uploads and forecasting requests.
type ForecastHandler struct {
	service        *services.ForecastService
	validator      *validation.FileValidator
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(service *services.ForecastService, validator *validation.FileValidator, logger *slog.Logger, maxUploadBytes int64) *ForecastHandler {
	return &ForecastHandler{
		service:        service,
		validator:      validator,
		logger:         logger.With(slog.String("handler", "forecast")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the forecast routes
func (h *ForecastHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Forecast)
	return r
}

// Forecast handles POST /api/forecast. The request is a multipart form
// with one or more "file" parts (.csv or .xlsx sharing one schema) and
// optional periods/from/to/category/region/product fields.
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, opts, apiErr := h.parseUploadRequest(w, r)
	if apiErr != nil {
		apierrors.WriteError(w, apiErr)
		return
	}

	result, err := h.service.Run(ctx, table, opts)
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline failed",
			slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.FromPipelineError(err))
		return
	}

	render.JSON(w, r, result)
}

// Summary handles POST /api/summary: the same multipart form as Forecast,
// but only cleans the dataset and returns its summary statistics.
func (h *ForecastHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, opts, apiErr := h.parseUploadRequest(w, r)
	if apiErr != nil {
		apierrors.WriteError(w, apiErr)
		return
	}

	result, err := h.service.Summarize(ctx, table, opts.Filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "summary failed",
			slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.FromPipelineError(err))
		return
	}

	render.JSON(w, r, result)
}

// parseUploadRequest parses the multipart form shared by the forecast and
// summary endpoints into a merged table and run options.
func (h *ForecastHandler) parseUploadRequest(w http.ResponseWriter, r *http.Request) (*dataset.Table, services.RunOptions, *apierrors.APIError) {
	var opts services.RunOptions

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WarnContext(r.Context(), "failed to parse multipart form",
			slog.String("error", err.Error()))
		return nil, opts, apierrors.NewValidationError("request must be a multipart form within the upload size limit")
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadFieldName]
	if len(files) == 0 {
		return nil, opts, apierrors.New(http.StatusBadRequest, "MISSING_FILE",
			"at least one \"file\" part is required")
	}

	table, err := h.loadUploads(files)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to load uploaded dataset",
			slog.String("error", err.Error()))
		return nil, opts, apierrors.NewValidationError(err.Error())
	}

	opts, apiErr := parseRunOptions(r.Form)
	if apiErr != nil {
		return nil, opts, apiErr
	}
	return table, opts, nil
}

// loadUploads parses each uploaded part into a table and merges them.
func (h *ForecastHandler) loadUploads(files []*multipart.FileHeader) (*dataset.Table, error) {
	tables := make([]*dataset.Table, 0, len(files))
	for _, fh := range files {
		if err := h.validator.ValidateUpload(fh.Filename, fh.Size, h.maxUploadBytes); err != nil {
			return nil, err
		}

		f, err := fh.Open()
		if err != nil {
			return nil, err
		}

		var table *dataset.Table
		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".xlsx":
			table, err = dataset.LoadXLSX(f)
		default:
			table, err = dataset.LoadCSV(f)
		}
		f.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return dataset.Merge(tables)
}

// parseRunOptions reads the optional form fields controlling the run.
func parseRunOptions(form url.Values) (services.RunOptions, *apierrors.APIError) {
	var opts services.RunOptions

	if v := form.Get("periods"); v != "" {
		periods, err := strconv.Atoi(v)
		if err != nil || periods < 1 {
			return opts, apierrors.NewValidationError("periods must be a positive integer")
		}
		opts.Periods = periods
	}

	if v := form.Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, apierrors.NewValidationError("from must be a YYYY-MM-DD date")
		}
		opts.Filters.From = &from
	}
	if v := form.Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, apierrors.NewValidationError("to must be a YYYY-MM-DD date")
		}
		opts.Filters.To = &to
	}

	opts.Filters.Categories = form["category"]
	opts.Filters.Regions = form["region"]
	opts.Filters.Products = form["product"]

	return opts, nil
}
