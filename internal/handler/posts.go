package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/model"
	"github.com/inkwell/backend/internal/service"
)

type PostHandler struct {
	svc     *service.PostService
	related *service.RelatedService
}

func NewPostHandler(svc *service.PostService, related *service.RelatedService) *PostHandler {
	return &PostHandler{svc: svc, related: related}
}

// List godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Param status query string false "Filter by status (draft|published)"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} model.PostListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/posts [get]
func (h *PostHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	posts, total, err := h.svc.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.PostListResponse{Posts: posts, Total: total})
}

// Get godoc
// @Summary Get a post by id or slug
// @Tags posts
// @Produce json
// @Param id path string true "Post ID or slug"
// @Success 200 {object} model.Post
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	param := c.Param("id")

	var (
		post *model.Post
		err  error
	)
	if postID, parseErr := strconv.ParseInt(param, 10, 64); parseErr == nil {
		post, err = h.svc.Get(c.Request.Context(), postID)
	} else {
		post, err = h.svc.GetBySlug(c.Request.Context(), param)
	}
	if err != nil {
		writePostError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PostCreateRequest true "Post payload"
// @Success 200 {object} model.Post
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	claims := GetIdentity(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	post, err := h.svc.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writePostError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Update godoc
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body model.PostUpdateRequest true "Fields to update"
// @Success 200 {object} model.Post
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/posts/{id} [patch]
func (h *PostHandler) Update(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req model.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	post, err := h.svc.Update(c.Request.Context(), postID, req)
	if err != nil {
		writePostError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} model.StatusResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), postID); err != nil {
		writePostError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "deleted"})
}

// Related godoc
// @Summary List related posts by embedding distance
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param limit query int false "Max results (default 5)"
// @Success 200 {array} model.RelatedPost
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/posts/{id}/related [get]
func (h *PostHandler) Related(c *gin.Context) {
	if h.related == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "related posts disabled"})
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	related, err := h.related.Related(c.Request.Context(), postID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, related)
}

func writePostError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case service.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
