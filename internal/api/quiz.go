package api

import (
	"fmt"
	"net/http"

	"github.com/coteroyale/storefront/internal/locale"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/coteroyale/storefront/internal/quiz"
	"github.com/gin-gonic/gin"
)

// QuizResults handles POST /api/quiz/results.
func (h *Handler) QuizResults(c *gin.Context) {
	var req models.QuizResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	contentLang, ok := locale.ContentLocale(req.Lang)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid language: %s", req.Lang)})
		return
	}

	products, err := h.Catalog.ProductsByType(c.Request.Context(), models.ProductTypeFragrance, contentLang)
	if err != nil {
		logger(c).WithError(err).Error("Failed to load fragrances for quiz results")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load fragrances"})
		return
	}

	c.JSON(http.StatusOK, models.QuizResultsResponse{Winners: quiz.Winners(req.Votes, products)})
}
