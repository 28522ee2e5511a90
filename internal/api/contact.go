package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/coteroyale/storefront/internal/locale"
	"github.com/coteroyale/storefront/internal/metrics"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/coteroyale/storefront/internal/notify"
	"github.com/coteroyale/storefront/internal/ratelimit"
	"github.com/coteroyale/storefront/internal/validation"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Contact handles POST /api/contact: rate limit, validate, then email the shop owner.
func (h *Handler) Contact(c *gin.Context) {
	clientID := ratelimit.ClientIdentifier(c.Request.Header)
	entry := logger(c).WithField("client_id", clientID)

	limit, ok := h.checkLimit(c, h.ContactLimiter, clientID)
	if !ok {
		metrics.ContactSubmissions.WithLabelValues("rate_limited").Inc()
		return
	}

	var raw any
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil || raw == nil {
		metrics.ContactSubmissions.WithLabelValues("invalid_json").Inc()
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON data"})
		return
	}

	result := validation.ValidateContact(raw)
	if !result.Success {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
			Error:   "Validation failed",
			Details: result.Errors,
		})
		return
	}

	cookie, _ := c.Cookie(locale.CookieName)
	contentLang, ok := locale.ContentLocale(locale.FromCookie(cookie))
	if !ok {
		metrics.ContactSubmissions.WithLabelValues("config_error").Inc()
		entry.Error("No content locale for the default URL locale")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Language configuration error"})
		return
	}

	settings, err := h.Settings.ContactSettings(c.Request.Context(), contentLang)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues("config_error").Inc()
		entry.WithError(err).Error("Failed to fetch contact settings")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Server configuration error"})
		return
	}

	if err := h.Dispatcher.Dispatch(c.Request.Context(), *result.Data, settings); err != nil {
		switch {
		case errors.Is(err, notify.ErrRecipientNotConfigured):
			metrics.ContactSubmissions.WithLabelValues("config_error").Inc()
			entry.WithField("lang", contentLang).Error("Recipient email is not configured in CMS settings")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Server configuration error"})
		case errors.Is(err, notify.ErrOwnerDelivery):
			metrics.ContactSubmissions.WithLabelValues("delivery_failed").Inc()
			entry.WithError(err).Error("Failed to send email to owner")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to send message. Please try again later."})
		default:
			metrics.ContactSubmissions.WithLabelValues("error").Inc()
			entry.WithError(err).Error("Unexpected error in contact API")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "An unexpected error occurred. Please try again later."})
		}
		return
	}

	metrics.ContactSubmissions.WithLabelValues("sent").Inc()
	entry.Info("Contact message sent")

	setLimitHeaders(c, h.ContactLimiter.Config(), limit)
	c.JSON(http.StatusOK, models.ContactResponse{Message: "Message sent successfully"})
}

// checkLimit counts the request and writes the 429 response when it is over the limit.
// A failing store lets the request through.
func (h *Handler) checkLimit(c *gin.Context, limiter *ratelimit.Limiter, clientID string) (ratelimit.Result, bool) {
	cfg := limiter.Config()
	res, err := limiter.Check(c.Request.Context(), clientID)
	if err != nil {
		logger(c).WithError(err).WithField("limiter", cfg.Name).Error("Rate limit check failed, allowing request")
		return ratelimit.Result{Allowed: true, Remaining: cfg.MaxRequests}, true
	}
	if res.Allowed {
		return res, true
	}

	metrics.RateLimitRejections.WithLabelValues(cfg.Name).Inc()
	logger(c).WithFields(log.Fields{
		"client_id":   clientID,
		"limiter":     cfg.Name,
		"retry_after": res.RetryAfter,
	}).Warn("Rate limit exceeded")

	retryAfter := res.RetryAfter
	if retryAfter <= 0 {
		retryAfter = int64(cfg.Window.Seconds())
	}
	c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	setLimitHeaders(c, cfg, res)
	c.JSON(http.StatusTooManyRequests, models.RateLimitedResponse{
		Error:      cfg.Message,
		RetryAfter: res.RetryAfter,
	})
	return res, false
}

// setLimitHeaders reports the window state. A zero ResetTime means the store could not be
// read, so there is nothing to report.
func setLimitHeaders(c *gin.Context, cfg ratelimit.Config, res ratelimit.Result) {
	if res.ResetTime == 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime, 10))
}
