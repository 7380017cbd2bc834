package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := auth.NewVerifier("test-secret-0123456789abcdef012345", nil)
	token, err := v.Issue("user-1", "buyer@example.com", auth.RoleUser, time.Hour)
	require.NoError(t, err)

	p, err := v.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", p.UserID.String())
	assert.Equal(t, "buyer@example.com", p.Email)
	assert.Equal(t, auth.RoleUser, p.Role)
	assert.Equal(t, token, p.Token)
}

func TestVerifier_Rejects(t *testing.T) {
	good := auth.NewVerifier("test-secret-0123456789abcdef012345", nil)
	other := auth.NewVerifier("other-secret-0123456789abcdef01234", nil)

	wrongKey, err := other.Issue("user-1", "a@example.com", auth.RoleUser, time.Hour)
	require.NoError(t, err)
	expired, err := good.Issue("user-1", "a@example.com", auth.RoleUser, -time.Hour)
	require.NoError(t, err)
	badRole, err := good.Issue("user-1", "a@example.com", auth.Role("root"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", auth.ErrNoToken},
		{"garbage", "not.a.jwt", auth.ErrInvalidToken},
		{"wrong key", wrongKey, auth.ErrInvalidToken},
		{"expired", expired, auth.ErrInvalidToken},
		{"unknown role", badRole, auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := good.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifier_Revoked(t *testing.T) {
	db, mock := redismock.NewClientMock()
	v := auth.NewVerifier("test-secret-0123456789abcdef012345", auth.NewRedisRevocations(db))

	token, err := v.Issue("user-1", "a@example.com", auth.RoleUser, time.Hour)
	require.NoError(t, err)

	mock.ExpectExists("blacklist:" + token).SetVal(1)
	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	mock.ExpectExists("blacklist:" + token).SetErr(errors.New("dial tcp: refused"))
	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrRevocationDown)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, auth.RoleUser.Can(auth.CapOrderCreate))
	assert.False(t, auth.RoleUser.Can(auth.CapOrderFulfil))
	assert.True(t, auth.RoleSeller.Can(auth.CapOrderFulfil))
	assert.False(t, auth.RoleSeller.Can(auth.CapPaymentCreate))
	assert.True(t, auth.RoleAdmin.Can(auth.CapOrderFulfil))
	assert.True(t, auth.RoleAdmin.Can(auth.CapOrderRead))
}

func TestGuard_Require(t *testing.T) {
	v := auth.NewVerifier("test-secret-0123456789abcdef012345", nil)
	guard := auth.NewGuard(v, nil)

	userToken, err := v.Issue("user-1", "a@example.com", auth.RoleUser, time.Hour)
	require.NoError(t, err)

	var got auth.Principal
	handler := guard.Require(auth.CapOrderFulfil, func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/orders/x/ship", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Unauthorized: No token provided"}`, rec.Body.String())
	})

	t.Run("insufficient role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/x/ship", nil)
		req.Header.Set("Authorization", "Bearer "+userToken)
		handler(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"forbidden","message":"Forbidden: Insufficient permissions"}`, rec.Body.String())
	})

	t.Run("cookie token", func(t *testing.T) {
		sellerToken, err := v.Issue("seller-1", "s@example.com", auth.RoleSeller, time.Hour)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/x/ship", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: sellerToken})
		handler(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "seller-1", got.UserID.String())
	})
}
