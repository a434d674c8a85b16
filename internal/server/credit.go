package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 50

func (s *Server) RequestCredit(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rel, err := s.creditSvc.RequestCredit(c.Request.Context(), identity, storeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rel)
}

func (s *Server) GetCreditInfo(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rel, err := s.creditSvc.GetCreditInfo(c.Request.Context(), identity, storeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"relationship":     rel,
		"available_credit": rel.AvailableCredit(),
	})
}

func (s *Server) ListCreditHistory(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := s.creditSvc.ListHistory(c.Request.Context(), identity, storeID, historyLimit(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) ListCustomers(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	storeID, ok := s.ownerStoreID(c)
	if !ok {
		return
	}

	accounts, err := s.creditSvc.ListCustomers(c.Request.Context(), identity, storeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": accounts})
}

type adjustCreditLimitRequest struct {
	CreditLimit int64 `json:"credit_limit"`
}

func (s *Server) AdjustCreditLimit(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	relationshipID, ok := parseIDParam(c, "relationship_id")
	if !ok {
		return
	}

	var req adjustCreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rel, err := s.creditSvc.AdjustCreditLimit(c.Request.Context(), identity, creditdomain.AdjustCreditLimitRequest{
		RelationshipID: relationshipID,
		CreditLimit:    req.CreditLimit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

type recordPaymentRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	relationshipID, ok := parseIDParam(c, "relationship_id")
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rel, err := s.creditSvc.RecordPayment(c.Request.Context(), identity, creditdomain.RecordPaymentRequest{
		RelationshipID: relationshipID,
		Amount:         req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

func (s *Server) ListCustomerHistory(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	relationshipID, ok := parseIDParam(c, "relationship_id")
	if !ok {
		return
	}

	entries, err := s.creditSvc.ListRelationshipHistory(c.Request.Context(), identity, relationshipID, historyLimit(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// ownerStoreID resolves the caller's store from the store_id query param, or
// from ownership when the param is absent.
func (s *Server) ownerStoreID(c *gin.Context) (snowflake.ID, bool) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return 0, false
	}

	raw := strings.TrimSpace(c.Query("store_id"))
	if raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("store_id", "invalid_id", "invalid identifier"))
			return 0, false
		}
		return id, true
	}

	store, err := s.storeSvc.GetStoreByOwner(c.Request.Context(), identity.UserID)
	if err != nil {
		AbortWithError(c, err)
		return 0, false
	}
	return store.ID, true
}

func historyLimit(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return defaultHistoryLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return defaultHistoryLimit
	}
	return limit
}
