package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/response"
	"github.com/stemsi/lms-backend/internal/service"
)

// writeServiceError maps a service error onto the response envelope.
// Internal causes are logged and never sent to the client.
func writeServiceError(c *gin.Context, log zerolog.Logger, err error) {
	var (
		vErr  *service.ValidationError
		nfErr *service.NotFoundError
		alErr *service.AttemptLimitExceededError
	)

	switch {
	case errors.As(err, &vErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, vErr.Fields)
	case errors.As(err, &nfErr):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.As(err, &alErr):
		response.FailWithMessage(c, http.StatusForbidden, response.ErrAttemptLimitExceeded, alErr.Error())
	default:
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// uuidParam parses a UUID path parameter, answering 400 INVALID_ID on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional UUID query parameter into dst.
func uuidQuery(c *gin.Context, name string, dst **uuid.UUID) bool {
	raw := c.Query(name)
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{name: name + " must be a valid UUID"})
		return false
	}
	*dst = &id
	return true
}
