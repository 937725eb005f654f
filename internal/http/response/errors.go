package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/articlerec/internal/embedding"
	"github.com/yungbote/articlerec/internal/platform/apierr"
	"github.com/yungbote/articlerec/internal/recommend"
	"github.com/yungbote/articlerec/internal/store"
	"github.com/yungbote/articlerec/internal/vecmath"
)

const (
	CodeStoreUnavailable = "store_unavailable"
	CodeDegenerateQuery  = "degenerate_query"
	CodeInvalidVector    = "invalid_vector"
	CodeInvalidRequest   = "invalid_request"
	CodeNotFound         = "not_found"
	CodeInternal         = "internal_error"
)

// Classify maps an engine error onto an HTTP status and error code.
func Classify(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	if ae := apierr.As(err); ae != nil {
		return ae
	}
	var invalid *embedding.InvalidEmbeddingError
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return apierr.New(http.StatusServiceUnavailable, CodeStoreUnavailable, err)
	case errors.Is(err, vecmath.ErrDegenerateVector):
		return apierr.New(http.StatusUnprocessableEntity, CodeDegenerateQuery, err)
	case errors.Is(err, vecmath.ErrDimensionMismatch), errors.As(err, &invalid):
		return apierr.New(http.StatusUnprocessableEntity, CodeInvalidVector, err)
	case errors.Is(err, recommend.ErrInvalidInput):
		return apierr.New(http.StatusBadRequest, CodeInvalidRequest, err)
	default:
		return apierr.New(http.StatusInternalServerError, CodeInternal, err)
	}
}

// Error classifies err and writes it as an error envelope.
func Error(c *gin.Context, err error) {
	ae := Classify(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, CodeInternal, nil)
	} else {
		_ = c.Error(err)
	}
	RespondError(c, ae.Status, ae.Code, ae)
}
