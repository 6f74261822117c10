package middleware

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"talent_server/core/domain"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"
	"talent_server/pkg/cache"
	"talent_server/pkg/httputil"
	"talent_server/pkg/logger"
	"talent_server/pkg/response"
)

// ActorKey is the fiber local carrying the authenticated *domain.Actor.
const ActorKey = "actor"

const (
	blacklistPrefix = "token:blacklist:"
	claimsKey       = "token_claims"
)

// AuthConfig wires the collaborators of the auth middleware. Redis and
// Cache are optional.
type AuthConfig struct {
	JWTSecret   string
	SupabaseURL string
	Profiles    out.ProfileRepository
	Redis       *redis.Client
	Cache       *cache.RedisCache
	CacheTTL    time.Duration
}

// Authenticator resolves the bearer token of a request into an Actor.
type Authenticator struct {
	secret   string
	jwks     *JWKSCache
	profiles out.ProfileRepository
	redis    *redis.Client
	cache    *cache.RedisCache
	cacheTTL time.Duration
	group    singleflight.Group
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	a := &Authenticator{
		secret:   cfg.JWTSecret,
		profiles: cfg.Profiles,
		redis:    cfg.Redis,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
	if cfg.SupabaseURL != "" {
		a.jwks = NewJWKSCache(strings.TrimSuffix(cfg.SupabaseURL, "/") + "/auth/v1/.well-known/jwks.json")
	}
	return a
}

// RevokeToken blacklists a token id until expiry.
func (a *Authenticator) RevokeToken(ctx context.Context, jti string, expiry time.Duration) error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Set(ctx, blacklistPrefix+jti, "1", expiry).Err()
}

func (a *Authenticator) isRevoked(ctx context.Context, jti string) bool {
	if a.redis == nil || jti == "" {
		return false
	}
	exists, err := a.redis.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		logger.WithError(err).Warn("token blacklist lookup failed")
		return false
	}
	return exists > 0
}

// Middleware rejects requests without a valid token or active profile.
func (a *Authenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			return apperr.Unauthorized("Unauthorized request")
		}

		claims, err := a.parse(tokenString)
		if err != nil {
			logger.WithError(err).Warn("JWT validation failed")
			return apperr.Unauthorized("Invalid Access Token").WithError(err)
		}

		ctx := c.UserContext()
		jti, _ := claims["jti"].(string)
		if a.isRevoked(ctx, jti) {
			return apperr.Unauthorized("Token has been revoked")
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			return apperr.Unauthorized("Invalid Access Token")
		}

		actor, err := a.loadActor(ctx, sub)
		if err != nil {
			if errors.Is(err, out.ErrNotFound) {
				return apperr.Unauthorized("Invalid Access Token")
			}
			return apperr.UpstreamReadFailure("load profile", err)
		}
		if !actor.Active {
			return apperr.Forbidden("Account is deactivated")
		}

		c.Locals(ActorKey, actor)
		c.Locals(claimsKey, claims)
		c.SetUserContext(context.WithValue(ctx, logger.UserIDKey, actor.ID))
		return c.Next()
	}
}

// Logout revokes the current token until it expires and drops the cached
// profile. It must run after Middleware.
func (a *Authenticator) Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(claimsKey).(jwt.MapClaims)
		if !ok {
			return apperr.Unauthorized("Unauthorized request")
		}
		ctx := c.UserContext()

		jti, _ := claims["jti"].(string)
		if jti != "" {
			ttl := time.Hour
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				ttl = time.Until(exp.Time) + time.Minute
			}
			if err := a.RevokeToken(ctx, jti, ttl); err != nil {
				return apperr.UpstreamWriteFailure("revoke token", err)
			}
		}
		if sub, _ := claims["sub"].(string); sub != "" && a.cache != nil {
			if err := a.cache.Delete(ctx, sub); err != nil {
				logger.WithContext(ctx).WithError(err).Debug("profile cache eviction failed")
			}
		}
		return response.OK(c, "Logged out successfully", nil)
	}
}

// bearerToken reads the Authorization header, then ?token= for
// EventSource clients that cannot set headers.
func bearerToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

func (a *Authenticator) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, a.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(time.Minute),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func (a *Authenticator) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if a.secret == "" {
			return nil, errors.New("JWT secret not configured")
		}
		return []byte(a.secret), nil

	case *jwt.SigningMethodECDSA, *jwt.SigningMethodRSA:
		if a.jwks == nil {
			return nil, errors.New("JWKS not configured")
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid in token header")
		}
		jwk, err := a.jwks.GetKey(kid)
		if err != nil {
			return nil, fmt.Errorf("failed to get public key: %w", err)
		}
		if _, isEC := token.Method.(*jwt.SigningMethodECDSA); isEC {
			return parseECPublicKey(jwk)
		}
		return parseRSAPublicKey(jwk)
	}
	return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
}

// loadActor reads the profile through the cache; concurrent requests for
// the same id share one lookup.
func (a *Authenticator) loadActor(ctx context.Context, id string) (*domain.Actor, error) {
	if a.cache != nil {
		var cached domain.Actor
		if hit, err := a.cache.GetJSON(ctx, id, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	v, err, _ := a.group.Do(id, func() (interface{}, error) {
		actor, err := a.profiles.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		actor.Normalize()
		if a.cache != nil && a.cacheTTL > 0 {
			if err := a.cache.SetJSON(ctx, id, actor, a.cacheTTL); err != nil {
				logger.WithError(err).Debug("profile cache write failed")
			}
		}
		return actor, nil
	})
	if err != nil {
		return nil, err
	}
	// Each request gets its own copy.
	actor := *v.(*domain.Actor)
	return &actor, nil
}

// =============================================================================
// JWKS
// =============================================================================

type JWKS struct {
	Keys []JWK `json:"keys"`
}

type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// JWKSCache keeps the identity provider's signing keys for ttl.
type JWKSCache struct {
	mu        sync.RWMutex
	jwks      *JWKS
	fetchedAt time.Time
	ttl       time.Duration
	url       string
	client    *http.Client
}

func NewJWKSCache(url string) *JWKSCache {
	return &JWKSCache{
		url:    url,
		ttl:    10 * time.Minute,
		client: httputil.NewOptimizedClient(httputil.DefaultClientConfig()),
	}
}

func (c *JWKSCache) GetKey(kid string) (*JWK, error) {
	c.mu.RLock()
	fresh := c.jwks != nil && time.Since(c.fetchedAt) < c.ttl
	if fresh {
		key := c.find(kid)
		c.mu.RUnlock()
		if key == nil {
			return nil, fmt.Errorf("key not found: %s", kid)
		}
		return key, nil
	}
	c.mu.RUnlock()

	if err := c.refresh(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if key := c.find(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("key not found: %s", kid)
}

// find requires c.mu to be held.
func (c *JWKSCache) find(kid string) *JWK {
	for i := range c.jwks.Keys {
		if c.jwks.Keys[i].Kid == kid {
			key := c.jwks.Keys[i]
			return &key
		}
	}
	return nil
}

func (c *JWKSCache) refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS fetch failed with status: %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}
	c.jwks = &jwks
	c.fetchedAt = time.Now()
	logger.Info("JWKS refreshed, %d keys loaded", len(jwks.Keys))
	return nil
}

func parseECPublicKey(jwk *JWK) (*ecdsa.PublicKey, error) {
	xBytes, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("failed to decode x: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(jwk.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to decode y: %w", err)
	}

	var curve elliptic.Curve
	switch jwk.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported curve: %s", jwk.Crv)
	}

	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}

func parseRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode e: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
