package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"phishing-detection-api/models"
	"phishing-detection-api/services"

	"github.com/gin-gonic/gin"
)

type BlacklistRequest struct {
	URL        string   `json:"url" binding:"required"`
	IsPhishing *bool    `json:"is_phishing"`
	Confidence *float64 `json:"confidence"`
}

type BlacklistCheckResponse struct {
	URL         string               `json:"url"`
	Blacklisted bool                 `json:"blacklisted"`
	Entry       *models.URLBlacklist `json:"entry,omitempty"`
}

type BlacklistHandler struct {
	blacklist *services.BlacklistService
}

func NewBlacklistHandler(blacklist *services.BlacklistService) *BlacklistHandler {
	return &BlacklistHandler{blacklist: blacklist}
}

func (h *BlacklistHandler) List(c *gin.Context) {
	p, err := ParsePagination(c, DefaultLimit, MaxLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, total, err := h.blacklist.List(c.Request.Context(), p.Limit, p.Offset)
	if err != nil {
		internalError(c, "list blacklist", err)
		return
	}
	if rows == nil {
		rows = []models.URLBlacklist{}
	}
	c.JSON(http.StatusOK, PageResponse{Data: rows, Total: total, Limit: p.Limit, Offset: p.Offset})
}

func (h *BlacklistHandler) Check(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url query parameter"})
		return
	}
	entry, err := h.blacklist.Lookup(c.Request.Context(), url)
	if err != nil {
		internalError(c, "check blacklist", err)
		return
	}
	c.JSON(http.StatusOK, BlacklistCheckResponse{
		URL:         url,
		Blacklisted: entry != nil && entry.IsPhishing,
		Entry:       entry,
	})
}

// Create adds or replaces a manual entry. It defaults to a phishing entry
// with full confidence.
func (h *BlacklistHandler) Create(c *gin.Context) {
	var req BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := services.BlacklistEntry{URL: req.URL, IsPhishing: true, Confidence: 1, Source: models.SourceManual}
	if req.IsPhishing != nil {
		entry.IsPhishing = *req.IsPhishing
	}
	if req.Confidence != nil {
		entry.Confidence = *req.Confidence
	}

	row, err := h.blacklist.Upsert(c.Request.Context(), entry)
	if errors.Is(err, services.ErrInvalidURL) || errors.Is(err, services.ErrInvalidScore) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		internalError(c, "create blacklist entry", err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *BlacklistHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = h.blacklist.Delete(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "blacklist entry not found"})
		return
	}
	if err != nil {
		internalError(c, "delete blacklist entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
