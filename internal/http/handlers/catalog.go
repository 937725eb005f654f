package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/articlerec/internal/http/response"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/store"
)

type CatalogHandler struct {
	catalog store.Catalog
	log     *logger.Logger
}

func NewCatalogHandler(catalog store.Catalog, log *logger.Logger) *CatalogHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CatalogHandler{catalog: catalog, log: log.With("handler", "CatalogHandler")}
}

// GET /users
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	users, err := h.catalog.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// GET /articles/*uri
func (h *CatalogHandler) GetArticle(c *gin.Context) {
	uri := strings.TrimPrefix(c.Param("uri"), "/")
	if strings.TrimSpace(uri) == "" {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, errors.New("article uri required"))
		return
	}
	detail, err := h.catalog.WorkDetail(c.Request.Context(), uri)
	if err != nil {
		response.Error(c, err)
		return
	}
	if detail == nil {
		response.RespondError(c, http.StatusNotFound, response.CodeNotFound, fmt.Errorf("article %q not found", uri))
		return
	}
	response.RespondOK(c, detail)
}

type conceptBody struct {
	Concept string `json:"concept"`
}

// POST /concepts/search
func (h *CatalogHandler) SearchConcept(c *gin.Context) {
	var body conceptBody
	if err := bindOptional(c, &body); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	label := strings.TrimSpace(body.Concept)
	if label == "" {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, errors.New("concept required"))
		return
	}
	hood, err := h.catalog.ConceptNeighborhood(c.Request.Context(), label)
	if err != nil {
		response.Error(c, err)
		return
	}
	if hood == nil {
		response.RespondError(c, http.StatusNotFound, response.CodeNotFound, fmt.Errorf("concept %q not found", label))
		return
	}
	response.RespondOK(c, hood)
}
