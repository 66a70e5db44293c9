// Package handler exposes uploads and their analytics over HTTP.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/service"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/sniffer"
	"github.com/FACorreiaa/invoice-insights/internal/domain/report"
	"github.com/FACorreiaa/invoice-insights/internal/domain/session"
	"github.com/FACorreiaa/invoice-insights/pkg/money"
	"github.com/FACorreiaa/invoice-insights/pkg/storage"
)

const (
	defaultMaxUploadBytes = 20 << 20
	multipartMemory       = 8 << 20
	previewRows           = 5

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AnalyticsHandler serves the upload API
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	reader    *parser.Reader
	uploads   session.Repository
	archive   storage.Storage // Optional: keeps the original files
	maxUpload int64
	currency  string
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *service.AnalyticsService, reader *parser.Reader, uploads session.Repository, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		reader:    reader,
		uploads:   uploads,
		maxUpload: defaultMaxUploadBytes,
		currency:  money.EUR,
		logger:    logger,
	}
}

// WithMaxUploadBytes caps the request body of uploads
func (h *AnalyticsHandler) WithMaxUploadBytes(n int64) *AnalyticsHandler {
	if n > 0 {
		h.maxUpload = n
	}
	return h
}

// WithCurrency sets the currency of text summaries
func (h *AnalyticsHandler) WithCurrency(code string) *AnalyticsHandler {
	if code != "" {
		h.currency = code
	}
	return h
}

// WithArchive keeps the original bytes of every upload in archive
func (h *AnalyticsHandler) WithArchive(archive storage.Storage) *AnalyticsHandler {
	h.archive = archive
	return h
}

// Routes mounts the upload endpoints on r
func (h *AnalyticsHandler) Routes(r chi.Router) {
	r.Post("/uploads", h.CreateUpload)
	r.Route("/uploads/{id}", func(r chi.Router) {
		r.Get("/", h.GetUpload)
		r.Delete("/", h.DeleteUpload)
		r.Post("/process", h.ProcessUpload)
		r.Get("/result", h.GetResult)
		r.Get("/export", h.ExportResult)
		r.Get("/source", h.DownloadSource)
	})
}

// UploadResponse describes an uploaded file and the mapping suggested for it
type UploadResponse struct {
	ID          uuid.UUID           `json:"id"`
	FileName    string              `json:"fileName"`
	Format      parser.Format       `json:"format"`
	Headers     []string            `json:"headers"`
	RowCount    int                 `json:"rowCount"`
	SampleRows  []ledger.RawRow     `json:"sampleRows"`
	Delimiter   string              `json:"delimiter,omitempty"`
	SkipLines   int                 `json:"skipLines,omitempty"`
	Fingerprint string              `json:"fingerprint"`
	Suggestion  *service.Suggestion `json:"suggestion"`
	Mapping     *detector.Mapping   `json:"mapping,omitempty"` // last processed mapping
	Processed   bool                `json:"processed"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error      string                   `json:"error"`
	Validation *service.ValidationError `json:"validation,omitempty"`
}

// CreateUpload reads a multipart "file" into a new upload
func (h *AnalyticsHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file too large (max %d MB)", h.maxUpload>>20))
			return
		}
		h.writeError(w, http.StatusBadRequest, "expected a multipart form with a 'file' field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to retrieve 'file' from request")
		return
	}
	defer file.Close()

	var (
		in       io.Reader = file
		original bytes.Buffer
	)
	if h.archive != nil {
		in = io.TeeReader(file, &original)
	}

	table, err := h.reader.Read(header.Filename, in)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to read upload", slog.String("file", header.Filename), slog.Any("error", err))
		h.writeError(w, readErrorStatus(err), err.Error())
		return
	}

	u, err := h.uploads.Create(r.Context(), filepath.Base(header.Filename), table)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to store upload", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	if h.archive != nil {
		contentType := header.Header.Get("Content-Type")
		if _, err := h.archive.Save(r.Context(), u.ID, u.FileName, contentType, &original); err != nil {
			h.logger.WarnContext(r.Context(), "failed to archive upload",
				slog.String("upload_id", u.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	h.logger.InfoContext(r.Context(), "upload stored",
		slog.String("upload_id", u.ID.String()),
		slog.String("file", u.FileName),
		slog.Int("rows", len(table.Rows)),
	)
	h.writeJSON(w, http.StatusCreated, h.describe(r, u))
}

// GetUpload returns the upload description and suggestion
func (h *AnalyticsHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUpload(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.describe(r, u))
}

// ProcessUpload runs the pipeline with the mapping in the body. An empty body
// accepts the suggested mapping. Reprocessing replaces the stored result.
func (h *AnalyticsHandler) ProcessUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUpload(w, r)
	if !ok {
		return
	}

	var m detector.Mapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		if !errors.Is(err, io.EOF) {
			h.writeError(w, http.StatusBadRequest, "invalid mapping body")
			return
		}
		m = h.analytics.Detect(r.Context(), u.Table.Headers).Mapping
	}

	res, err := h.analytics.Process(r.Context(), u.Table.Headers, u.Table.Rows, m)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Validation: verr})
			return
		}
		h.logger.ErrorContext(r.Context(), "processing failed", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	if _, err := h.uploads.SaveResult(r.Context(), u.ID, m, res); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to store result")
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// GetResult returns the result of the latest run
func (h *AnalyticsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadResult(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// ExportResult downloads the latest result as csv (default), xlsx or txt
func (h *AnalyticsHandler) ExportResult(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	var (
		contentType string
		write       func(io.Writer, *aggregate.Result) error
	)
	switch format {
	case "csv":
		contentType, write = "text/csv; charset=utf-8", report.WriteCSV
	case "xlsx":
		contentType, write = contentTypeXLSX, report.WriteXLSX
	case "txt":
		contentType = "text/plain; charset=utf-8"
		write = func(w io.Writer, res *aggregate.Result) error {
			_, err := io.WriteString(w, report.Summary(res, h.currency))
			return err
		}
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	u, ok := h.loadUpload(w, r)
	if !ok {
		return
	}
	if !u.Processed() {
		h.writeError(w, http.StatusConflict, "upload has not been processed")
		return
	}

	name := strings.TrimSuffix(u.FileName, filepath.Ext(u.FileName)) + "-ledger." + format
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := write(w, u.Result); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", slog.String("format", format), slog.Any("error", err))
	}
}

// DeleteUpload forgets an upload
func (h *AnalyticsHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uploadID(w, r)
	if !ok {
		return
	}
	if err := h.uploads.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	if h.archive != nil {
		if err := h.archive.Delete(r.Context(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "failed to remove archived upload",
				slog.String("upload_id", id.String()),
				slog.Any("error", err),
			)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadSource streams the file as it was uploaded
func (h *AnalyticsHandler) DownloadSource(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUpload(w, r)
	if !ok {
		return
	}
	if h.archive == nil {
		h.writeError(w, http.StatusNotFound, "original files are not archived")
		return
	}

	rc, info, err := h.archive.Open(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to open archived upload", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", u.FileName))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream archived upload", slog.Any("error", err))
	}
}

func (h *AnalyticsHandler) describe(r *http.Request, u *session.Upload) UploadResponse {
	resp := UploadResponse{
		ID:          u.ID,
		FileName:    u.FileName,
		Format:      u.Table.Format,
		Headers:     u.Table.Headers,
		RowCount:    len(u.Table.Rows),
		SampleRows:  u.Table.Sample(previewRows),
		Fingerprint: sniffer.Fingerprint(u.Table.Headers),
		Suggestion:  h.analytics.Detect(r.Context(), u.Table.Headers),
		Mapping:     u.Mapping,
		Processed:   u.Processed(),
		CreatedAt:   u.CreatedAt,
	}
	if l := u.Table.Layout; l != nil {
		resp.Delimiter = string(l.Delimiter)
		resp.SkipLines = l.SkipLines
	}
	return resp
}

func (h *AnalyticsHandler) uploadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid upload id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AnalyticsHandler) loadUpload(w http.ResponseWriter, r *http.Request) (*session.Upload, bool) {
	id, ok := h.uploadID(w, r)
	if !ok {
		return nil, false
	}
	u, err := h.uploads.Get(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return nil, false
	}
	return u, true
}

func (h *AnalyticsHandler) loadResult(w http.ResponseWriter, r *http.Request) (*aggregate.Result, bool) {
	u, ok := h.loadUpload(w, r)
	if !ok {
		return nil, false
	}
	if !u.Processed() {
		h.writeError(w, http.StatusConflict, "upload has not been processed")
		return nil, false
	}
	return u.Result, true
}

func (h *AnalyticsHandler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("upload repository failed", slog.Any("error", err))
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON encodes v before sending the status so that an encoding failure
// becomes a 500 instead of a truncated body.
func (h *AnalyticsHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Debug("failed to write response", slog.Any("error", err))
	}
}

func (h *AnalyticsHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}

func readErrorStatus(err error) int {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, sniffer.ErrEmptyFile), errors.Is(err, sniffer.ErrNoHeadersFound),
		errors.Is(err, sniffer.ErrInvalidDelimiter), errors.Is(err, parser.ErrNoSheet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
