package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	"github.com/colmadolabs/colmado/internal/authorization"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	orderdomain "github.com/colmadolabs/colmado/internal/order/domain"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"invalid credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"expired session", authdomain.ErrSessionExpired, http.StatusUnauthorized, "unauthorized"},
		{"unauthenticated checkout", orderdomain.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{"identity mismatch", orderdomain.ErrIdentityMismatch, http.StatusForbidden, "forbidden"},
		{"rbac denial", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"duplicate user", authdomain.ErrUserExists, http.StatusConflict, "conflict"},
		{"duplicate relationship", creditdomain.ErrRelationshipExists, http.StatusConflict, "conflict"},
		{"rate limited", ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{"store missing", storedomain.ErrStoreNotFound, http.StatusNotFound, "not_found"},
		{"relationship missing", creditdomain.ErrRelationshipNotFound, http.StatusNotFound, "not_found"},
		{"overpayment", creditdomain.ErrOverpayment, http.StatusBadRequest, "validation_error"},
		{"limit below balance", creditdomain.ErrLimitBelowBalance, http.StatusBadRequest, "validation_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestErrorHandlingMiddlewareEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, creditdomain.ErrRelationshipNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Type)
	assert.Equal(t, "not found", body.Error.Message)
}

func TestErrorHandlingMiddlewareValidationDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.POST("/submit", func(c *gin.Context) {
		AbortWithError(c, newValidationError("amount", "required", "amount is required"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Type)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "amount", body.Error.Errors[0].Field)
	assert.Equal(t, "required", body.Error.Errors[0].Code)
}

func TestCheckoutFailureReasons(t *testing.T) {
	reason, ok := checkoutFailureReason(orderdomain.ErrLimitExceeded)
	assert.True(t, ok)
	assert.Equal(t, "order exceeds available credit", reason)

	reason, ok = checkoutFailureReason(orderdomain.ErrNotApproved)
	assert.True(t, ok)
	assert.Equal(t, "credit account not approved", reason)

	// Fatal inconsistency is masked behind the generic retry message.
	reason, ok = checkoutFailureReason(orderdomain.ErrCompensationFailed)
	assert.True(t, ok)
	assert.Equal(t, "something went wrong, please try again later", reason)

	// Transport-level failures do not use the checkout envelope.
	_, ok = checkoutFailureReason(orderdomain.ErrUnauthenticated)
	assert.False(t, ok)
	_, ok = checkoutFailureReason(errors.New("boom"))
	assert.False(t, ok)
}
