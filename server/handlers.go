package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/usecasegen/ingestion"
	"github.com/poiesic/usecasegen/search"
	"github.com/poiesic/usecasegen/storage"
)

const (
	serviceName    = "Fusefy AI Usecase Generator API"
	serviceVersion = "1.0.0"

	defaultSearchLimit = 50
)

type uploadDocumentRequest struct {
	FileContent     string `json:"file_content"`
	Filename        string `json:"filename"`
	CloudID         string `json:"cloud_id"`
	StageName       string `json:"stage_name"`
	AppName         string `json:"app_name"`
	RiskFrameworkID string `json:"risk_framework_id"`
}

type processUsecaseRequest struct {
	Hash            string `json:"hash"`
	S3URL           string `json:"s3url"`
	CloudID         string `json:"cloudId"`
	RiskFrameworkID string `json:"riskframeworkid"`
}

// bindJSON decodes the request body into v, answering the request itself
// when that fails.
func bindJSON(c *gin.Context, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, Envelope{
			Success: false,
			Message: "Document too large",
			Error:   "InvalidRequest",
		})
		return false
	}
	respondBadRequest(c, "Invalid request body", "InvalidRequest")
	return false
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceName,
		"version": serviceVersion,
		"endpoints": []string{
			"GET /health",
			"POST /upload-document",
			"POST /process-usecase",
			"GET /usecases/:tenant/search?q=",
			"GET /usecases/:tenant/:id",
		},
	})
}

func (s *Server) uploadDocument(c *gin.Context) {
	var body uploadDocumentRequest
	if !bindJSON(c, &body) {
		return
	}
	if body.FileContent == "" {
		respondBadRequest(c, "No file content provided", "Missing file_content")
		return
	}
	if strings.TrimSpace(body.CloudID) == "" {
		respondBadRequest(c, "cloud_id is required", "Missing cloud_id")
		return
	}

	content, err := base64.StdEncoding.DecodeString(body.FileContent)
	if err != nil {
		respondBadRequest(c, "file_content must be base64 encoded", "InvalidRequest")
		return
	}

	filename := body.Filename
	if filename == "" {
		filename = ingestion.DefaultFilename
	}

	res, err := s.ingester.Ingest(c.Request.Context(), ingestion.Request{
		Tenant:          body.CloudID,
		Naming:          storage.Naming{Stage: body.StageName, App: body.AppName},
		RiskFrameworkID: body.RiskFrameworkID,
		Document:        &ingestion.Document{Filename: filename, Content: content},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res)
}

func (s *Server) processUsecase(c *gin.Context) {
	var body processUsecaseRequest
	if !bindJSON(c, &body) {
		return
	}
	if body.Hash == "" || body.S3URL == "" || body.CloudID == "" {
		respondBadRequest(c, `Fields "hash", "s3url", and "cloudId" are required in the request body.`, "InvalidRequest")
		return
	}

	res, err := s.ingester.Ingest(c.Request.Context(), ingestion.Request{
		Tenant:          body.CloudID,
		RiskFrameworkID: body.RiskFrameworkID,
		Upload:          &ingestion.Upload{URL: body.S3URL, Hash: body.Hash},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res)
}

// naming resolves the collection naming from the stage and app query
// parameters, falling back to the pipeline default.
func (s *Server) naming(c *gin.Context) storage.Naming {
	n := s.ingester.Naming()
	if stage := c.Query("stage"); stage != "" {
		n.Stage = stage
	}
	if app := c.Query("app"); app != "" {
		n.App = app
	}
	return n
}

func (s *Server) getUsecase(c *gin.Context) {
	collection := s.naming(c).Usecases(c.Param("tenant"))
	item, err := s.store.Get(c.Request.Context(), collection, c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usecase not found"})
		return
	case err != nil:
		s.logger.Error("failed to read usecase", "id", c.Param("id"), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read usecase"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usecase": item})
}

func (s *Server) searchUsecases(c *gin.Context) {
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	collection := s.naming(c).Usecases(c.Param("tenant"))
	results, err := s.searcher.Find(c.Request.Context(), collection, c.Query("q"), limit)
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "q must contain at least one search word"})
		return
	case err != nil:
		s.logger.Error("search failed", "collection", collection, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Search failed"})
		return
	}

	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, r.Item)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "results": items})
}
