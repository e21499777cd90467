package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studio-insight/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDownloadHandler_RequestDownload(t *testing.T) {
	logger := zerolog.Nop()
	user := testUser()
	digitalProductID := uuid.New()

	t.Run("granted", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		resp := &model.DownloadResponse{
			URL:       "https://files.example.com/signed",
			FileName:  "course-materials.zip",
			ExpiresAt: time.Now().Add(15 * time.Minute),
		}
		mockService.On("RequestDownload", mock.Anything, user.ID, digitalProductID).Return(resp, nil)

		req := authedRequest(http.MethodPost, "/api/downloads/"+digitalProductID.String(), nil, user)
		w := httptest.NewRecorder()

		handler.RequestDownload(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got model.DownloadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "https://files.example.com/signed", got.URL)
	})

	t.Run("denied", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		mockService.On("RequestDownload", mock.Anything, user.ID, digitalProductID).
			Return(nil, model.ErrDownloadDenied)

		req := authedRequest(http.MethodPost, "/api/downloads/"+digitalProductID.String(), nil, user)
		w := httptest.NewRecorder()

		handler.RequestDownload(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown file", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		mockService.On("RequestDownload", mock.Anything, user.ID, digitalProductID).
			Return(nil, model.ErrDigitalProductNotFound)

		req := authedRequest(http.MethodPost, "/api/downloads/"+digitalProductID.String(), nil, user)
		w := httptest.NewRecorder()

		handler.RequestDownload(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed ID", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		req := authedRequest(http.MethodPost, "/api/downloads/not-a-uuid", nil, user)
		w := httptest.NewRecorder()

		handler.RequestDownload(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "RequestDownload")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/downloads/"+digitalProductID.String(), nil)
		w := httptest.NewRecorder()

		handler.RequestDownload(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDownloadHandler_ListProductFiles(t *testing.T) {
	logger := zerolog.Nop()
	user := testUser()

	t.Run("purchaser sees files", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		files := []model.DigitalProduct{
			{ID: uuid.New(), ProductID: "video-editing-course", FileName: "course-materials.zip"},
		}
		mockService.On("ListProductFiles", mock.Anything, user.ID, "video-editing-course").Return(files, nil)

		req := authedRequest(http.MethodGet, "/api/products/video-editing-course/digital", nil, user)
		w := httptest.NewRecorder()

		handler.ListProductFiles(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-purchaser is forbidden", func(t *testing.T) {
		mockService := new(MockAccessService)
		handler := NewDownloadHandler(mockService, logger)

		mockService.On("ListProductFiles", mock.Anything, user.ID, "video-editing-course").
			Return(nil, model.ErrNotPurchased)

		req := authedRequest(http.MethodGet, "/api/products/video-editing-course/digital", nil, user)
		w := httptest.NewRecorder()

		handler.ListProductFiles(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
