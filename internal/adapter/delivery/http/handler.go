package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/usecase"
	"github.com/vadimbarashkov/phishing-detector/pkg/response"
)

const (
	defaultStatisticsDays = 30
	maxStatisticsDays     = 365

	csvFormField       = "file"
	createdByFormField = "created_by"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type analysisUseCase interface {
	AnalyzeURL(ctx context.Context, rawURL, createdBy string) (*entity.AnalysisRecord, error)
	AnalyzeBatch(ctx context.Context, urls []string, createdBy string) entity.BatchReport
	AnalyzeCSV(ctx context.Context, r io.Reader, createdBy string) (entity.BatchReport, error)
	Statistics(ctx context.Context, days int) *entity.StatisticsSnapshot
	RecentAnalyses(ctx context.Context, limit int) ([]entity.AnalysisRecord, error)
	Health(ctx context.Context) entity.HealthReport
}

type analysisHandler struct {
	useCase        analysisUseCase
	validate       *validator.Validate
	maxUploadBytes int64
}

func newAnalysisHandler(useCase analysisUseCase, validate *validator.Validate, maxUploadBytes int64) *analysisHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &analysisHandler{
		useCase:        useCase,
		validate:       validate,
		maxUploadBytes: maxUploadBytes,
	}
}

// decodeJSON decodes and validates the request body into v. It writes the
// error response itself and reports whether the handler may continue.
func (h *analysisHandler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBody)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidRequestBody)
		return false
	}

	if err := h.validate.Struct(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Validation(err))
		return false
	}

	return true
}

func (h *analysisHandler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest

	if !h.decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.useCase.AnalyzeURL(r.Context(), req.URL, req.CreatedBy)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerError)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAnalyzeResponse(rec))
}

func (h *analysisHandler) analyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest

	if !h.decodeJSON(w, r, &req) {
		return
	}

	report := h.useCase.AnalyzeBatch(r.Context(), req.URLs, req.CreatedBy)

	httplog.LogEntrySetField(r.Context(), "batch_id", slog.StringValue(report.BatchID))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toBatchResponse(report))
}

func (h *analysisHandler) analyzeCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, _, err := r.FormFile(csvFormField)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.NewError("multipart field \"file\" with a csv document is required"))
		return
	}
	defer file.Close()

	report, err := h.useCase.AnalyzeCSV(r.Context(), file, r.FormValue(createdByFormField))
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		if errors.Is(err, entity.ErrMalformedCSV) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.NewError("malformed csv document"))
			return
		}

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerError)
		return
	}

	httplog.LogEntrySetField(r.Context(), "batch_id", slog.StringValue(report.BatchID))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toBatchResponse(report))
}

func (h *analysisHandler) statistics(w http.ResponseWriter, r *http.Request) {
	days, ok := intQuery(w, r, "days", defaultStatisticsDays, 1, maxStatisticsDays)
	if !ok {
		return
	}

	snap := h.useCase.Statistics(r.Context(), days)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatisticsResponse(snap))
}

func (h *analysisHandler) recentAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "limit", usecase.DefaultRecentLimit, 1, usecase.MaxRecentLimit)
	if !ok {
		return
	}

	records, err := h.useCase.RecentAnalyses(r.Context(), limit)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		if errors.Is(err, entity.ErrInvalidLimit) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidQuery)
			return
		}

		if errors.Is(err, entity.ErrStoreUnavailable) {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.StoreUnavailable)
			return
		}

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerError)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toRecordResponses(records))
}

func (h *analysisHandler) health(w http.ResponseWriter, r *http.Request) {
	report := h.useCase.Health(r.Context())

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toHealthResponse(report))
}

// intQuery reads an optional integer query parameter bounded to [lo, hi].
// On a bad value it writes a 400 response and returns false.
func intQuery(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		resp := response.InvalidQuery
		resp.Errors = []response.FieldError{{
			Field:   name,
			Message: fmt.Sprintf("must be an integer between %d and %d", lo, hi),
		}}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp)
		return 0, false
	}

	return v, true
}
