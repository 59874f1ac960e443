package handler_test

import (
	"agv-finance/internal/api/handler"
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/domain/customer/mocks"
	"agv-finance/internal/infrastructure/storage"
	"agv-finance/internal/pkg/apperrors"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, kind, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if kind != "" {
		require.NoError(t, mw.WriteField("kind", kind))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newDocumentHandler(t *testing.T, svc *mocks.CustomerService, maxSize int64) (*handler.DocumentHandler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, testLogger())
	require.NoError(t, err)
	return handler.NewDocumentHandler(svc, store, maxSize, testLogger()), dir
}

func TestDocumentHandler_UploadDocument(t *testing.T) {
	t.Run("Stores file and attaches it", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, dir := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()
		svc.On("GetCustomer", mock.Anything, c.ID).Return(c, nil).Once()
		svc.On("AttachDocument", mock.Anything, c.ID, "pan", mock.AnythingOfType("string")).
			Return(func() *customer.Customer {
				withDoc := *c
				withDoc.Documents = map[string]string{"pan": "stored"}
				return &withDoc
			}(), nil).Once()

		body, contentType := multipartUpload(t, "PAN", "scan.PDF", []byte("%PDF-1.4 test"))
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var resp dto.DocumentResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "pan", resp.Kind)
		assert.True(t, strings.HasPrefix(resp.File, c.ID.String()[:8]+"-pan_"))
		assert.True(t, strings.HasSuffix(resp.File, ".pdf"))

		stored, err := os.ReadFile(filepath.Join(dir, resp.File))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 test", string(stored))
	})

	t.Run("Replacing a kind deletes the previous file", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, dir := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()
		c.Documents = map[string]string{"pan": "old-pan.pdf", "photo": "keep.png"}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "old-pan.pdf"), []byte("old"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.png"), []byte("png"), 0o600))
		svc.On("GetCustomer", mock.Anything, c.ID).Return(c, nil).Once()
		svc.On("AttachDocument", mock.Anything, c.ID, "pan", mock.AnythingOfType("string")).Return(c, nil).Once()

		body, contentType := multipartUpload(t, "pan", "new.pdf", []byte("%PDF-1.7"))
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		_, err := os.Stat(filepath.Join(dir, "old-pan.pdf"))
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = os.Stat(filepath.Join(dir, "keep.png"))
		assert.NoError(t, err)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("Failed attach leaves no file behind", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, dir := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()
		svc.On("GetCustomer", mock.Anything, c.ID).Return(c, nil).Once()
		svc.On("AttachDocument", mock.Anything, c.ID, "photo", mock.AnythingOfType("string")).
			Return(nil, fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, customer.ErrNotFound, c.ID)).Once()

		body, contentType := multipartUpload(t, "photo", "face.jpg", []byte("jpeg"))
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Rejects unsupported extension", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, _ := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()

		body, contentType := multipartUpload(t, "photo", "payload.exe", []byte("MZ"))
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "document", decodeError(t, rr).Error.Field)
	})

	t.Run("Rejects unknown kind before touching storage", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, dir := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()

		body, contentType := multipartUpload(t, "passport", "p.png", []byte("png"))
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "kind", decodeError(t, rr).Error.Field)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Missing file", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, _ := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()

		body, contentType := multipartUpload(t, "pan", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No file uploaded", decodeError(t, rr).Error.Message)
	})

	t.Run("File over limit", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, _ := newDocumentHandler(t, svc, 16)
		c := sampleCustomer()

		body, contentType := multipartUpload(t, "pan", "big.pdf", bytes.Repeat([]byte("x"), 64))
		req := httptest.NewRequest(http.MethodPost, "/api/customers/"+c.ID.String()+"/documents", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "customerID", c.ID.String())
		rr := httptest.NewRecorder()

		h.UploadDocument(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "document", decodeError(t, rr).Error.Field)
	})
}

func TestDocumentHandler_DownloadDocument(t *testing.T) {
	t.Run("Serves stored file", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, dir := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()
		c.Documents = map[string]string{"photo": "7b0c5f0e-photo_abc.png"}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "7b0c5f0e-photo_abc.png"), []byte("png-bytes"), 0o600))
		svc.On("GetCustomer", mock.Anything, c.ID).Return(c, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers/"+c.ID.String()+"/documents/photo", nil)
		req = withURLParams(req, "customerID", c.ID.String(), "kind", "photo")
		rr := httptest.NewRecorder()

		h.DownloadDocument(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "png-bytes", rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "7b0c5f0e-photo_abc.png")
	})

	t.Run("Kind not uploaded", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, _ := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()
		svc.On("GetCustomer", mock.Anything, c.ID).Return(c, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers/"+c.ID.String()+"/documents/pan", nil)
		req = withURLParams(req, "customerID", c.ID.String(), "kind", "pan")
		rr := httptest.NewRecorder()

		h.DownloadDocument(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Document not found", decodeError(t, rr).Error.Message)
	})

	t.Run("File missing on disk", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		h, _ := newDocumentHandler(t, svc, 0)
		c := sampleCustomer()
		c.Documents = map[string]string{"pan": "gone.pdf"}
		svc.On("GetCustomer", mock.Anything, c.ID).Return(c, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers/"+c.ID.String()+"/documents/pan", nil)
		req = withURLParams(req, "customerID", c.ID.String(), "kind", "pan")
		rr := httptest.NewRecorder()

		h.DownloadDocument(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
