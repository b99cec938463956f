package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artsfront/internal/artwork"
	"github.com/yungbote/artsfront/internal/catalog"
	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/http/response"
)

type ArtworkHandler struct {
	lookup *artwork.Lookup
}

func NewArtworkHandler(lookup *artwork.Lookup) *ArtworkHandler {
	return &ArtworkHandler{lookup: lookup}
}

type artworkJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

type artworkViewJSON struct {
	State   artwork.State         `json:"state"`
	Artwork *artworkJSON          `json:"artwork,omitempty"`
	Reason  catalog.FailureReason `json:"reason,omitempty"`
	Message string                `json:"message,omitempty"`
}

type artworkPage struct {
	State   artwork.State
	Artwork *domain.ArtworkRecord
	Price   string
	Reason  catalog.FailureReason
	Message string
}

// GET /api/artworks/:id
func (h *ArtworkHandler) GetArtwork(c *gin.Context) {
	v := h.lookup.Fetch(c.Request.Context(), domain.ID(c.Param("id")))
	out := artworkViewJSON{State: v.State, Reason: v.Reason}
	if v.State == artwork.StateLoaded {
		out.Artwork = &artworkJSON{
			ID:          v.Artwork.ID.String(),
			Title:       v.Artwork.Title,
			Artist:      v.Artwork.Artist,
			Price:       v.Artwork.Price.StringFixed(2),
			Description: v.Artwork.Description,
		}
		response.RespondOK(c, out)
		return
	}
	if v.Err != nil {
		_ = c.Error(v.Err)
	}
	out.Message = failureMessage(v.Reason)
	c.JSON(failureStatus(v.Reason), out)
}

// GET /artworks/:id
func (h *ArtworkHandler) ArtworkPage(c *gin.Context) {
	v := h.lookup.Fetch(c.Request.Context(), domain.ID(c.Param("id")))
	page := artworkPage{State: v.State, Artwork: v.Artwork, Reason: v.Reason}
	status := http.StatusOK
	if v.State == artwork.StateLoaded {
		page.Price = v.Artwork.Price.StringFixed(2)
	} else {
		if v.Err != nil {
			_ = c.Error(v.Err)
		}
		status = failureStatus(v.Reason)
		page.Message = failureMessage(v.Reason)
	}
	c.HTML(status, "artwork.html", page)
}

func failureStatus(reason catalog.FailureReason) int {
	switch reason {
	case catalog.ReasonNotFound:
		return http.StatusNotFound
	case catalog.ReasonInvalidID:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func failureMessage(reason catalog.FailureReason) string {
	switch reason {
	case catalog.ReasonNotFound:
		return "This artwork does not exist."
	case catalog.ReasonInvalidID:
		return "An artwork id is required."
	default:
		return "This artwork could not be loaded. Please try again later."
	}
}
