package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/coteroyale/storefront/internal/checkout"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateCheckout handles POST /api/checkout.
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Cart is empty or invalid."})
		return
	}

	url, err := h.Checkout.CreateSession(c.Request.Context(), checkout.Request{
		Cart:   req.Cart,
		Lang:   req.Lang,
		Origin: c.GetHeader("Origin"),
	})
	if err != nil {
		status, msg := checkoutError(err, req.Lang)
		entry := logger(c).WithError(err)
		if status >= http.StatusInternalServerError {
			entry.Error("Checkout session creation failed")
		} else {
			entry.Warn("Checkout rejected")
		}
		c.JSON(status, models.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{URL: url})
}

func checkoutError(err error, lang string) (int, string) {
	var notFound *checkout.NotFoundError
	var wrongType *checkout.WrongTypeError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, "Cart is empty or invalid."
	case errors.Is(err, checkout.ErrInvalidLanguage):
		return http.StatusBadRequest, fmt.Sprintf("Invalid language: %s", lang)
	case errors.As(err, &notFound):
		return http.StatusNotFound, fmt.Sprintf("Product with ID %s not found.", notFound.ID)
	case errors.As(err, &wrongType):
		return http.StatusBadRequest, fmt.Sprintf("Product with ID %s is not a fragrance.", wrongType.ID)
	case errors.Is(err, checkout.ErrNoSessionURL):
		return http.StatusInternalServerError, "Could not create Stripe session."
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
