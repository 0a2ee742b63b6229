package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filmatlas/filmatlas/internal/movies"
	"github.com/filmatlas/filmatlas/pkg/logger"
)

// MoviesHandler serves the public catalog endpoints.
type MoviesHandler struct {
	movies *movies.Service
}

func NewMoviesHandler(s *movies.Service) *MoviesHandler {
	return &MoviesHandler{movies: s}
}

// Search handles GET /movies/search?title=&year=&page=.
func (h *MoviesHandler) Search(c *gin.Context) {
	for param := range c.Request.URL.Query() {
		if param != "title" && param != "year" && param != "page" {
			c.JSON(http.StatusBadRequest, errorBody("Invalid query parameters: "+param+". Query parameters are not permitted."))
			return
		}
	}

	res, err := h.movies.Search(c.Request.Context(), c.Query("title"), c.Query("year"), c.Query("page"))
	if err != nil {
		var verr *movies.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, errorBody(verr.Message))
			return
		}
		logger.Errorf("search movies: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, res)
}

// Details handles GET /movies/data/:imdbID. No query parameters are
// permitted on this route.
func (h *MoviesHandler) Details(c *gin.Context) {
	if len(c.Request.URL.Query()) > 0 {
		c.JSON(http.StatusBadRequest, errorBody("Invalid query parameters: "+firstQueryParam(c)+". Query parameters are not permitted."))
		return
	}

	d, err := h.movies.Details(c.Request.Context(), c.Param("imdbID"))
	if err != nil {
		if errors.Is(err, movies.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("No record exists of a movie with this ID"))
			return
		}
		logger.Errorf("movie details: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, d)
}

func firstQueryParam(c *gin.Context) string {
	for param := range c.Request.URL.Query() {
		return param
	}
	return ""
}
