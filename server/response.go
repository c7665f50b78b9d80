package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/ingestion"
)

// Envelope is the response body of the ingestion endpoints.
type Envelope struct {
	Success      bool   `json:"success"`
	UsecaseID    string `json:"usecaseId,omitempty"`
	Category     string `json:"category,omitempty"`
	DocumentHash string `json:"documentHash,omitempty"`
	Message      string `json:"message"`
	Error        string `json:"error,omitempty"`
}

func respondResult(c *gin.Context, res ingestion.Result) {
	c.JSON(http.StatusOK, Envelope{
		Success:      true,
		UsecaseID:    res.UsecaseID,
		Category:     res.Category.String(),
		DocumentHash: res.DocumentHash,
		Message:      core.Message(nil),
	})
}

// respondError renders err through the error taxonomy.
func respondError(c *gin.Context, err error) {
	c.JSON(core.HTTPStatus(err), Envelope{
		Success: false,
		Message: core.Message(err),
		Error:   core.Kind(err),
	})
}

// respondBadRequest reports a malformed request body.
func respondBadRequest(c *gin.Context, message, detail string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
