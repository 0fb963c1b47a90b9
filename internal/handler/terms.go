package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/model"
	"github.com/inkwell/backend/internal/service"
)

type TermHandler struct {
	svc *service.TermService
}

func NewTermHandler(svc *service.TermService) *TermHandler {
	return &TermHandler{svc: svc}
}

// List godoc
// @Summary List taxonomy terms
// @Tags terms
// @Produce json
// @Param kind query string false "Filter by kind (category|tag)"
// @Success 200 {array} model.Term
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/terms [get]
func (h *TermHandler) List(c *gin.Context) {
	terms, err := h.svc.List(c.Request.Context(), c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, terms)
}

// Create godoc
// @Summary Create a taxonomy term
// @Tags terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TermCreateRequest true "Term payload"
// @Success 200 {object} model.Term
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/terms [post]
func (h *TermHandler) Create(c *gin.Context) {
	var req model.TermCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	term, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writePostError(c, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

// Delete godoc
// @Summary Delete a taxonomy term
// @Tags terms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Term ID"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/terms/{id} [delete]
func (h *TermHandler) Delete(c *gin.Context) {
	termID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid term id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), termID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "deleted"})
}
