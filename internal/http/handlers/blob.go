package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/http/response"
	"github.com/yungbote/artsfront/internal/imaging"
)

type BlobHandler struct {
	store       blobstore.Store
	placeholder []byte
}

func NewBlobHandler(store blobstore.Store, placeholder []byte) *BlobHandler {
	return &BlobHandler{store: store, placeholder: placeholder}
}

// GET /blobs/:handle
func (h *BlobHandler) GetBlob(c *gin.Context) {
	b, err := h.store.Get(c.Request.Context(), domain.ImageHandle(c.Param("handle")))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "image_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "image_unavailable", err)
		return
	}
	// Handles are never reused, so a live one always names the same bytes.
	c.Header("Cache-Control", "private, max-age=3600, immutable")
	c.Data(http.StatusOK, b.ContentType, b.Data)
}

// GET /placeholder-image.png
func (h *BlobHandler) Placeholder(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, imaging.PNGContentType, h.placeholder)
}
