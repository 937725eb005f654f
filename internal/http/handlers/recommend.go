package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/http/response"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/recommend"
)

// Recommender is the engine surface served over HTTP.
type Recommender interface {
	Search(ctx context.Context, topic, searchQuery string) ([]domain.RankedRecord, error)
	Recommend(ctx context.Context, req recommend.RecommendRequest) ([]domain.RankedRecord, error)
}

type RecommendHandler struct {
	svc Recommender
	log *logger.Logger
}

func NewRecommendHandler(svc Recommender, log *logger.Logger) *RecommendHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &RecommendHandler{svc: svc, log: log.With("handler", "RecommendHandler")}
}

type searchBody struct {
	Topic       string `json:"topic"`
	SearchQuery string `json:"search_query"`
}

type recommendBody struct {
	UserID      string `json:"user_id"`
	Topic       string `json:"topic"`
	SearchQuery string `json:"search_query"`
	Weighted    bool   `json:"weighted"`
	TopN        int    `json:"top_n"`
}

// bindOptional decodes a JSON body; an empty body leaves dst at its zero value.
func bindOptional(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// POST /search
func (h *RecommendHandler) Search(c *gin.Context) {
	var body searchBody
	if err := bindOptional(c, &body); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	recs, err := h.svc.Search(c.Request.Context(), body.Topic, body.SearchQuery)
	if err != nil {
		h.log.Warn("search failed", "topic", body.Topic, "error", err)
		response.Error(c, err)
		return
	}
	response.RespondOK(c, domain.Views(recs))
}

// POST /recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var body recommendBody
	if err := bindOptional(c, &body); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	recs, err := h.svc.Recommend(c.Request.Context(), recommend.RecommendRequest{
		UserID:      strings.TrimSpace(body.UserID),
		Topic:       body.Topic,
		SearchQuery: body.SearchQuery,
		Weighted:    body.Weighted,
		TopN:        body.TopN,
	})
	if err != nil {
		h.log.Warn("recommend failed", "user_id", body.UserID, "weighted", body.Weighted, "error", err)
		response.Error(c, err)
		return
	}
	response.RespondOK(c, domain.Views(recs))
}
