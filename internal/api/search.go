package api

import (
	"fmt"
	"net/http"

	"github.com/coteroyale/storefront/internal/checkout"
	"github.com/coteroyale/storefront/internal/locale"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/coteroyale/storefront/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Search handles GET /api/search?query=&lang=.
func (h *Handler) Search(c *gin.Context) {
	if h.SearchLimiter != nil {
		if _, ok := h.checkLimit(c, h.SearchLimiter, ratelimit.ClientIdentifier(c.Request.Header)); !ok {
			return
		}
	}

	lang := c.Query("lang")
	if lang == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Language parameter is required"})
		return
	}
	contentLang, ok := locale.ContentLocale(lang)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid language: %s", lang)})
		return
	}

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusOK, []models.SearchResult{})
		return
	}

	products, err := h.Catalog.SearchProducts(c.Request.Context(), query, contentLang)
	if err != nil {
		logger(c).WithError(err).WithField("query", query).Error("CMS search failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch search results"})
		return
	}

	results := make([]models.SearchResult, 0, len(products))
	for _, p := range products {
		results = append(results, models.SearchResult{
			ProductRecord:  p,
			FormattedPrice: checkout.FormatAmount(p.Price) + " " + checkout.CurrencyLabel,
		})
	}

	logger(c).WithFields(log.Fields{
		"query":   query,
		"results": len(results),
	}).Debug("Search completed")

	c.JSON(http.StatusOK, results)
}
