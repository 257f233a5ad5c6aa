package controllers

import (
	"net/http"

	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// garageFromContext pulls the authenticated garage id set by the JWT
// middleware. Writes the error response itself when missing or malformed.
func garageFromContext(c *gin.Context) (uuid.UUID, bool) {
	garageID, exists := c.Get("garageId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Garage ID not found in context")
		return uuid.Nil, false
	}

	garageUUID, err := uuid.Parse(garageID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid garage ID format")
		return uuid.Nil, false
	}
	return garageUUID, true
}

func userFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userUUID, true
}

// pathUUID parses a :id style path parameter.
func pathUUID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
