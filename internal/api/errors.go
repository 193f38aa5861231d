package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strings"  // Message joining

	"matchday/internal/domain"     // Error envelope
	"matchday/internal/middleware" // Request logger
	"matchday/internal/provider"   // Upstream errors

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding errors
	"github.com/sirupsen/logrus"             // Logging
)

// respondError writes err as a JSON error body with a matching status
func respondError(c *gin.Context, err error) {
	var appErr *domain.AppError
	var upstream *provider.UpstreamError
	switch {
	case errors.As(err, &appErr):
		if appErr.Status >= http.StatusInternalServerError {
			middleware.Logger(c).WithField("error", err.Error()).Error(appErr.Message)
		}
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
	case errors.As(err, &upstream):
		middleware.Logger(c).WithFields(logrus.Fields{
			"provider":        upstream.Provider,
			"upstream_status": upstream.Status,
		}).Warn("Upstream request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":           fmt.Sprintf("%s returned %d", upstream.Provider, upstream.Status),
			"code":            "UPSTREAM_ERROR",
			"upstream_status": upstream.Status,
		})
	default:
		middleware.Logger(c).WithField("error", err.Error()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL_ERROR"})
	}
}

// bindError turns a binding failure into a validation error listing the offending fields
func bindError(err error) *domain.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrValidation("invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return domain.ErrValidation(strings.Join(msgs, "; "))
}
