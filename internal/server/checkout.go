package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/colmadolabs/colmado/internal/order/domain"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"github.com/gin-gonic/gin"
)

type checkoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type checkoutRequest struct {
	StoreID       string         `json:"store_id"`
	CustomerID    string         `json:"customer_id"`
	PaymentMethod string         `json:"payment_method"`
	Items         []checkoutItem `json:"items"`
}

type checkoutResponse struct {
	Success bool               `json:"success"`
	Order   *orderdomain.Order `json:"order,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Checkout is the coordinator entry point. Business rejections and
// compensated failures come back as 200 with success=false so the storefront
// can show the reason; only transport-level problems use the error envelope.
func (s *Server) Checkout(c *gin.Context) {
	identity, ok := s.identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if s.checkoutLimiter != nil {
		result, err := s.checkoutLimiter.Allow(c.Request.Context(), identity.UserID)
		if err == nil && !result.Allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	storeID, err := snowflake.ParseString(req.StoreID)
	if err != nil {
		AbortWithError(c, newValidationError("store_id", "invalid_id", "invalid identifier"))
		return
	}
	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_id", "invalid identifier"))
		return
	}

	items := make([]storedomain.ItemSelection, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := snowflake.ParseString(item.ProductID)
		if err != nil {
			AbortWithError(c, newValidationError("items", "invalid_id", "invalid product identifier"))
			return
		}
		items = append(items, storedomain.ItemSelection{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.orderSvc.ProcessOrder(c.Request.Context(), identity, orderdomain.ProcessOrderRequest{
		CustomerID:    customerID,
		StoreID:       storeID,
		PaymentMethod: orderdomain.PaymentMethod(req.PaymentMethod),
		Items:         items,
	})
	if err != nil {
		if reason, ok := checkoutFailureReason(err); ok {
			c.JSON(http.StatusOK, checkoutResponse{Success: false, Error: reason})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutResponse{Success: true, Order: order})
}

// checkoutFailureReason maps a coordinator failure to the user-facing reason
// string. Fatal inconsistency gets the generic retry message; the details
// stay in logs and metrics for operators.
func checkoutFailureReason(err error) (string, bool) {
	switch {
	case errors.Is(err, orderdomain.ErrRelationshipNotFound):
		return "no credit account with this store", true
	case errors.Is(err, orderdomain.ErrNotApproved):
		return "credit account not approved", true
	case errors.Is(err, orderdomain.ErrLimitExceeded):
		return "order exceeds available credit", true
	case errors.Is(err, orderdomain.ErrConcurrentModification):
		return "your order could not be placed, please try again", true
	case errors.Is(err, orderdomain.ErrHistoryWriteFailed),
		errors.Is(err, orderdomain.ErrOrderCreationFailed):
		return "your order could not be placed", true
	case errors.Is(err, orderdomain.ErrCompensationFailed):
		return "something went wrong, please try again later", true
	case errors.Is(err, storedomain.ErrProductNotFound),
		errors.Is(err, storedomain.ErrProductUnavailable),
		errors.Is(err, storedomain.ErrStoreClosed):
		return "some items are unavailable", true
	default:
		return "", false
	}
}
