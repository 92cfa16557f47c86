package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/application/service"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/presentation/http/middleware"
)

// GetCustomerID extracts the customer ID from the Gin context
func GetCustomerID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get(middleware.CustomerIDKey)
	if !exists {
		return nil
	}
	id, ok := val.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}

// GetRequester builds the service requester from the authenticated claims.
// Guests get an empty requester.
func GetRequester(c *gin.Context) service.Requester {
	return service.Requester{
		CustomerID: GetCustomerID(c),
		Name:       c.GetString(middleware.CustomerNameKey),
		Email:      c.GetString(middleware.CustomerEmailKey),
		Role:       enum.CustomerRole(c.GetString(middleware.CustomerRoleKey)),
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}
