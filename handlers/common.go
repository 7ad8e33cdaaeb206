// Package handlers contains the Gin controllers. They bind input, resolve
// the caller, call into stores and services, and translate errors to HTTP.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kahenya/sales-crm/apperr"
)

// respondError surfaces a failure as a single message string with the status
// the taxonomy maps it to.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
}

// pathID parses the :id route parameter. A malformed id aborts with 400.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
