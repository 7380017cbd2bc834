// Package auth verifies the JWTs issued by the auth service and gates
// routes on role capabilities.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/redis/go-redis/v9"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

var (
	ErrNoToken        = types.NewError(types.KindUnauthorized, "unauthorized", "Unauthorized: No token provided")
	ErrInvalidToken   = types.NewError(types.KindUnauthorized, "unauthorized", "Unauthorized: Invalid token")
	ErrRevocationDown = types.NewError(types.KindUpstreamUnavailable, "upstream_unavailable", "Token revocation list unavailable")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID types.UserID
	Email  string
	Role   Role
	// Token is the raw credential, forwarded to upstream services that
	// authorize on it (cart).
	Token string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Revocations reports tokens invalidated before expiry (logout).
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisRevocations reads the blacklist:<token> keys the auth service
// writes on logout.
type RedisRevocations struct {
	client redis.Cmdable
}

func NewRedisRevocations(client redis.Cmdable) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, "blacklist:"+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Verifier validates HS256 tokens.
type Verifier struct {
	secret      []byte
	revocations Revocations
	now         func() time.Time
}

// NewVerifier creates a verifier. revocations may be nil.
func NewVerifier(secret string, revocations Revocations) *Verifier {
	return &Verifier{secret: []byte(secret), revocations: revocations, now: time.Now}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrNoToken
	}

	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var std jwt.Claims
	var c claims
	if err := tok.Claims(v.secret, &std, &c); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := std.ValidateWithLeeway(jwt.Expected{Time: v.now()}, time.Minute); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := types.ParseUserID(c.ID)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	role, ok := ParseRole(c.Role)
	if !ok {
		return Principal{}, ErrInvalidToken
	}

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, raw)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: %v", ErrRevocationDown, err)
		}
		if revoked {
			return Principal{}, ErrInvalidToken
		}
	}

	return Principal{UserID: userID, Email: c.Email, Role: role, Token: raw}, nil
}

// Issue signs a token. Production tokens come from the auth service; this
// serves local tooling and tests.
func (v *Verifier) Issue(userID, email string, role Role, ttl time.Duration) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: v.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("creating signer: %w", err)
	}

	now := v.now()
	std := jwt.Claims{
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.Signed(signer).
		Claims(std).
		Claims(claims{ID: userID, Email: email, Role: string(role)}).
		Serialize()
}
