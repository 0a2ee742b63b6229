package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filmatlas/filmatlas/internal/posters"
	"github.com/filmatlas/filmatlas/pkg/logger"
)

// PostersHandler serves poster upload and download.
type PostersHandler struct {
	store posters.Store
}

func NewPostersHandler(store posters.Store) *PostersHandler {
	return &PostersHandler{store: store}
}

// Get handles GET /posters/:imdbID.
func (h *PostersHandler) Get(c *gin.Context) {
	rc, contentType, err := h.store.Get(c.Request.Context(), c.Param("imdbID"))
	if err != nil {
		if errors.Is(err, posters.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("No poster exists for this movie"))
			return
		}
		logger.Errorf("get poster: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "image/png"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Errorf("stream poster: %v", err)
	}
}

// Put handles PUT /posters/:imdbID (protected, image/png only).
func (h *PostersHandler) Put(c *gin.Context) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "image/png") {
		c.JSON(http.StatusBadRequest, errorBody("Posters must be uploaded as image/png"))
		return
	}

	if err := h.store.Put(c.Request.Context(), c.Param("imdbID"), c.Request.Body, c.Request.ContentLength, "image/png"); err != nil {
		logger.Errorf("put poster: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Poster uploaded successfully"})
}
