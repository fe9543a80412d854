// AngelaMos | 2026
// service.go

package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fiscaldesk/internal/account"
	"fiscaldesk/internal/core"
	"fiscaldesk/internal/middleware"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service is the web portal's authentication layer. It issues short
// lived access tokens against the same account store the desktop gate
// uses; there are no refresh tokens, a portal session simply expires.
type Service struct {
	accounts account.Repository
	jwt      *JWTManager
	redis    *redis.Client
	tokenTTL time.Duration
}

func NewService(
	accounts account.Repository,
	jwt *JWTManager,
	redisClient *redis.Client,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		accounts: accounts,
		jwt:      jwt,
		redis:    redisClient,
		tokenTTL: tokenTTL,
	}
}

// Login verifies the credential against the account store and issues an
// access token. Only APPROVED accounts may enter the portal; the device
// binding and session flag of the desktop gate are not touched.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	acct, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &acct.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !acct.IsApproved() {
		return nil, core.ForbiddenError("account is not approved")
	}

	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		AccountID: acct.ID,
		Role:      acct.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	now := time.Now()
	return &LoginResponse{
		Account: AccountSummary{
			ID:    acct.ID,
			Email: acct.Email,
			Name:  acct.Name,
			Role:  acct.Role,
		},
		Token: TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.tokenTTL / time.Second),
			ExpiresAt:   now.Add(s.tokenTTL),
		},
	}, nil
}

// Logout blacklists the token's jti for its remaining lifetime, so the
// token dies immediately instead of at its natural expiry.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	key := "blacklist:" + claims.JTI
	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier: signature and
// claim checks via the key manager, then a blacklist lookup.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	exists, err := s.redis.Exists(ctx, "blacklist:"+claims.JTI).Result()
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) GetCurrentAccount(
	ctx context.Context,
	accountID string,
) (*AccountSummary, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("account not found")
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &AccountSummary{
		ID:    acct.ID,
		Email: acct.Email,
		Name:  acct.Name,
		Role:  acct.Role,
	}, nil
}
