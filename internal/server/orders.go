package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetOrder(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := s.orderSvc.GetOrder(c.Request.Context(), identity, orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) ListOrders(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orders, err := s.orderSvc.ListOrders(c.Request.Context(), identity, historyLimit(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) ListStoreOrders(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	storeID, ok := s.ownerStoreID(c)
	if !ok {
		return
	}

	orders, err := s.orderSvc.ListStoreOrders(c.Request.Context(), identity, storeID, historyLimit(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
