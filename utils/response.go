// utils/response.go
package utils

import (
	"errors"
	"log"
	"net/http"

	"garagepro-backend/billing"

	"github.com/gin-gonic/gin"
)

// RespondWithError logs the failure and writes a JSON error body.
func RespondWithError(c *gin.Context, status int, message string) {
	log.Printf("[ERROR] %s %s | %d | %s", c.Request.Method, c.Request.URL.Path, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithBillingError maps the billing package's typed errors to HTTP
// statuses: validation failures are 400, illegal transitions 409.
func RespondWithBillingError(c *gin.Context, err error) {
	var verr *billing.ValidationError
	if errors.As(err, &verr) {
		RespondWithError(c, http.StatusBadRequest, verr.Error())
		return
	}
	var terr *billing.TransitionError
	if errors.As(err, &terr) {
		RespondWithError(c, http.StatusConflict, terr.Error())
		return
	}
	RespondWithError(c, http.StatusInternalServerError, err.Error())
}
