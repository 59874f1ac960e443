package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/validation"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
)

var allowedDocumentExts = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}

type DocumentStore interface {
	Save(ctx context.Context, prefix, ext string, r io.Reader) (string, error)
	Open(name string) (*os.File, error)
	Remove(ctx context.Context, name string) error
}

type DocumentHandler struct {
	customers customer.CustomerService
	store     DocumentStore
	maxSize   int64
	logger    *slog.Logger
}

func NewDocumentHandler(customers customer.CustomerService, store DocumentStore, maxSize int64, l *slog.Logger) *DocumentHandler {
	if maxSize <= 0 {
		maxSize = validation.DefaultMaxFileSize
	}
	return &DocumentHandler{
		customers: customers,
		store:     store,
		maxSize:   maxSize,
		logger:    l.With("component", "DocumentHandler"),
	}
}

// UploadDocument handles POST /api/customers/{customerID}/documents
// @Summary Upload a customer document
// @Description Multipart upload with fields kind (aadhar, pan, photo, signature, other) and document (pdf, jpg or png).
// @Tags Customers
// @Accept multipart/form-data
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param kind formData string true "Document kind"
// @Param document formData file true "Document file"
// @Success 201 {object} dto.DocumentResponse "Document stored"
// @Failure 400 {object} dto.ErrorResponse "Invalid upload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{customerID}/documents [post]
// @Security SessionCookie
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, apperrors.NewValidationError("document", validation.FileSize(tooLarge.Limit, h.maxSize).Error()))
			return
		}
		respondError(w, fmt.Errorf("%w: invalid multipart form: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("document")
	if err != nil {
		respondError(w, apperrors.NewValidationError("document", "No file uploaded"))
		return
	}
	defer file.Close()

	if err := validation.FileSize(header.Size, h.maxSize); err != nil {
		respondError(w, apperrors.NewValidationError("document", err.Error()))
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedDocumentExts[ext] {
		respondError(w, apperrors.NewValidationError("document", "Only PDF, JPG and PNG files are accepted"))
		return
	}

	kind := strings.ToLower(strings.TrimSpace(r.FormValue("kind")))
	if !slices.Contains(customer.DocumentKinds, kind) {
		respondError(w, apperrors.NewValidationError("kind", "Invalid document kind. Valid kinds: "+strings.Join(customer.DocumentKinds, ", ")))
		return
	}
	current, err := h.customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	replaced := current.Documents[kind]

	stored, err := h.store.Save(r.Context(), customerID.String()[:8]+"-"+kind, ext, file)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to store document", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: could not store document", apperrors.ErrInternalServer))
		return
	}

	c, err := h.customers.AttachDocument(r.Context(), customerID, kind, stored)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to attach document", slog.Any("error", err))
		h.removeFile(r.Context(), stored)
		respondError(w, err)
		return
	}
	if replaced != "" && replaced != stored {
		h.removeFile(r.Context(), replaced)
	}
	h.logger.InfoContext(r.Context(), "Document uploaded", slog.String("customerID", customerID.String()), slog.String("kind", kind))
	respondJSON(w, http.StatusCreated, dto.DocumentResponse{Kind: kind, File: stored, Customer: dto.NewCustomerResponse(c)})
}

// removeFile drops a stored file no customer record points at.
func (h *DocumentHandler) removeFile(ctx context.Context, name string) {
	if err := h.store.Remove(ctx, name); err != nil {
		h.logger.WarnContext(ctx, "Failed to remove document file", slog.String("file", name), slog.Any("error", err))
	}
}

// DownloadDocument handles GET /api/customers/{customerID}/documents/{kind}
// @Summary Download a customer document
// @Tags Customers
// @Produce octet-stream
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param kind path string true "Document kind"
// @Success 200 {file} file "Document"
// @Failure 404 {object} dto.ErrorResponse "Customer or document not found"
// @Router /api/customers/{customerID}/documents/{kind} [get]
// @Security SessionCookie
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}
	c, err := h.customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	kind := strings.ToLower(chi.URLParam(r, "kind"))
	name, ok := c.Documents[kind]
	if !ok {
		respondError(w, fmt.Errorf("%w: document not found (kind %s)", apperrors.ErrNotFound, kind))
		return
	}

	f, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.logger.WarnContext(r.Context(), "Document file missing", slog.String("file", name))
			respondError(w, fmt.Errorf("%w: document not found (kind %s)", apperrors.ErrNotFound, kind))
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to open document", slog.Any("error", err))
		respondError(w, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
