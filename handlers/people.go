package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filmatlas/filmatlas/internal/people"
	"github.com/filmatlas/filmatlas/pkg/logger"
)

// PeopleHandler serves the protected person endpoint.
type PeopleHandler struct {
	people *people.Service
}

func NewPeopleHandler(s *people.Service) *PeopleHandler {
	return &PeopleHandler{people: s}
}

// Get handles GET /people/:id. No query parameters are permitted.
func (h *PeopleHandler) Get(c *gin.Context) {
	if len(c.Request.URL.Query()) > 0 {
		c.JSON(http.StatusBadRequest, errorBody("Invalid query parameters: "+firstQueryParam(c)+". Query parameters are not permitted."))
		return
	}

	p, err := h.people.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, people.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("No record exists of a person with this ID"))
			return
		}
		logger.Errorf("person details: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, p)
}
