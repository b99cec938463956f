package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/http/response"
	"github.com/yungbote/artsfront/internal/platform/apierr"
	"github.com/yungbote/artsfront/internal/summary"
)

type SummaryHandler struct {
	sessions    *summary.Manager
	fallbackURL string
}

func NewSummaryHandler(sessions *summary.Manager, fallbackURL string) *SummaryHandler {
	return &SummaryHandler{sessions: sessions, fallbackURL: fallbackURL}
}

type createSummaryRequest struct {
	OrderNumber string                `json:"orderNumber"`
	CartItems   []domain.CartLineItem `json:"cartItems"`
}

// BlobURL is where a stored image handle is served.
func BlobURL(h domain.ImageHandle) string {
	return "/blobs/" + url.PathEscape(string(h))
}

func (h *SummaryHandler) view(s *summary.Session) summary.View {
	return summary.BuildView(s.Snapshot(), BlobURL, h.fallbackURL)
}

// POST /api/summaries
func (h *SummaryHandler) CreateSummary(c *gin.Context) {
	var req createSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, err := h.sessions.Open(c.Request.Context(), req.OrderNumber, req.CartItems)
	if err != nil {
		if errors.Is(err, summary.ErrSessionClosed) {
			response.RespondError(c, http.StatusServiceUnavailable, "shutting_down", err)
			return
		}
		response.RespondAPIError(c, apierr.BadRequest("invalid_cart", err))
		return
	}
	c.Header("Location", "/api/summaries/"+s.ID())
	response.RespondCreated(c, h.view(s))
}

// GET /api/summaries/:id
// With ?wait=true the response is held until image resolution settles.
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		if err := s.Wait(c.Request.Context()); err != nil {
			_ = c.Error(err)
		}
	}
	response.RespondOK(c, h.view(s))
}

// GET /summaries/:id
func (h *SummaryHandler) SummaryPage(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"Message": "This order summary is no longer available."})
		return
	}
	c.HTML(http.StatusOK, "summary.html", h.view(s))
}

// POST /api/summaries/:id/refresh
func (h *SummaryHandler) RefreshSummary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, summary.ErrSessionClosed) {
			response.RespondAPIError(c, apierr.NotFound("summary_not_found", err))
			return
		}
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.view(s))
}

// DELETE /api/summaries/:id
func (h *SummaryHandler) DeleteSummary(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		response.RespondAPIError(c, apierr.NotFound("summary_not_found", err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SummaryHandler) session(c *gin.Context) (*summary.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, apierr.NotFound("summary_not_found", err))
		return nil, false
	}
	return s, true
}
