package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ndtrung/vietshop/internal/storage"
)

type StorageHandler struct {
	Store *storage.Client
}

func (h *StorageHandler) UploadFile(c echo.Context) error {
	if h.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	url, err := h.Store.Upload(c.Request().Context(), fh.Filename, src, fh.Size,
		fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "upload failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}

// DeleteFile removes an object by its public URL. The URL is validated
// against the bucket's public prefix before any storage call.
func (h *StorageHandler) DeleteFile(c echo.Context) error {
	if h.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	if err := h.Store.Delete(c.Request().Context(), req.URL); err != nil {
		if errors.Is(err, storage.ErrUnknownURL) {
			return echo.NewHTTPError(http.StatusBadRequest, "url does not belong to this storage")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "delete failed")
	}

	return c.NoContent(http.StatusNoContent)
}
