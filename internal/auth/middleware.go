package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// zoneGroupPrefix marks groups that grant access to one zone, e.g. /zones/LON
const zoneGroupPrefix = "/zones/"

type Claims struct {
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Groups       []string `json:"groups"`
	AllowedZones []string `json:"allowedZones"` // city codes, extracted from groups
	AllZones     bool     `json:"allZones"`     // admin override
	jwt.RegisteredClaims
}

type contextKey string

const UserContextKey contextKey = "user"

// Config controls token handling
type Config struct {
	// Enabled is false when no identity provider is configured or SKIP_AUTH=true
	Enabled         bool
	VerifySignature bool
	Issuer          string
}

// LoadConfig reads auth settings from the environment. Auth is on when
// OIDC_ISSUER is set or SKIP_AUTH is explicitly "false".
func LoadConfig() Config {
	issuer := os.Getenv("OIDC_ISSUER")
	skip := os.Getenv("SKIP_AUTH")
	env := os.Getenv("ENV")

	enabled := issuer != "" || skip == "false"
	if skip == "true" {
		enabled = false
	}

	verify := os.Getenv("VERIFY_JWT_SIGNATURE") == "true"
	// In production, verify signature by default
	if env != "development" && env != "" {
		verify = true
	}

	return Config{Enabled: enabled, VerifySignature: verify, Issuer: issuer}
}

// JWKSManager handles JWKS fetching and caching
type JWKSManager struct {
	jwks       keyfunc.Keyfunc
	issuerURL  string
	mu         sync.RWMutex
	lastUpdate time.Time
}

// refresh fetches the JWKS from the OIDC provider
func (m *JWKSManager) refresh(logger zerolog.Logger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Construct JWKS URL (Keycloak format)
	jwksURL := strings.TrimSuffix(m.issuerURL, "/") + "/protocol/openid-connect/certs"
	logger.Info().Str("url", jwksURL).Msg("fetching JWKS")

	k, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return fmt.Errorf("failed to create keyfunc: %w", err)
	}

	m.jwks = k
	m.lastUpdate = time.Now()
	logger.Info().Msg("JWKS loaded")
	return nil
}

// getKeyfunc returns the JWT keyfunc for token verification
func (m *JWKSManager) getKeyfunc() jwt.Keyfunc {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.jwks == nil {
		return nil
	}
	return m.jwks.Keyfunc
}

// Authenticator validates bearer tokens and attaches Claims to the request
type Authenticator struct {
	cfg    Config
	logger zerolog.Logger

	jwks     *JWKSManager
	jwksOnce sync.Once
	jwksErr  error
}

// New creates an Authenticator
func New(cfg Config, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Middleware validates JWT tokens from OIDC provider
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if !a.cfg.Enabled {
			// no identity provider: local use, full access
			ctx := context.WithValue(r.Context(), UserContextKey, &Claims{
				Name:     "Anonymous",
				Role:     "admin",
				AllZones: true,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// Extract token from Authorization header or query parameter
		tokenString := extractToken(r)
		if tokenString == "" {
			a.logger.Debug().Str("path", r.URL.Path).Msg("missing authorization token")
			http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.validateToken(tokenString)
		if err != nil {
			a.logger.Warn().Err(err).Msg("token validation failed")
			http.Error(w, fmt.Sprintf("Unauthorized: %v", err), http.StatusUnauthorized)
			return
		}

		a.logger.Debug().
			Str("email", claims.Email).
			Str("role", claims.Role).
			Strs("zones", claims.AllowedZones).
			Msg("user authenticated")

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken gets the token from Authorization header or query parameter
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}
	}

	// Try query parameter (for WebSocket connections)
	return r.URL.Query().Get("token")
}

// validateToken validates the JWT token with optional signature verification
func (a *Authenticator) validateToken(tokenString string) (*Claims, error) {
	var token *jwt.Token
	var err error

	if a.cfg.VerifySignature {
		token, err = a.parseAndVerifyToken(tokenString)
		if err != nil {
			return nil, err
		}
	} else {
		// Development: Parse without verification (for local testing)
		token, _, err = new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	claims := &Claims{}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	} else if preferredUsername, ok := mapClaims["preferred_username"].(string); ok {
		claims.Name = preferredUsername
	}

	claims.Role = extractRoleFromMapClaims(mapClaims)
	claims.Groups = extractGroupsFromMapClaims(mapClaims)
	claims.AllowedZones = extractZones(claims.Groups)
	claims.AllZones = claims.Role == "admin"

	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}

	// Check expiration (for unverified tokens - verified tokens check this automatically)
	if !a.cfg.VerifySignature {
		if exp, ok := mapClaims["exp"].(float64); ok {
			expTime := time.Unix(int64(exp), 0)
			claims.ExpiresAt = jwt.NewNumericDate(expTime)
			if expTime.Before(time.Now()) {
				return nil, fmt.Errorf("token expired")
			}
		}
	}

	return claims, nil
}

// parseAndVerifyToken verifies the JWT signature using JWKS
func (a *Authenticator) parseAndVerifyToken(tokenString string) (*jwt.Token, error) {
	a.jwksOnce.Do(func() {
		if a.cfg.Issuer == "" {
			a.jwksErr = fmt.Errorf("OIDC_ISSUER not configured for JWT verification")
			return
		}
		a.jwks = &JWKSManager{issuerURL: a.cfg.Issuer}
		a.jwksErr = a.jwks.refresh(a.logger)
	})
	if a.jwksErr != nil {
		return nil, fmt.Errorf("failed to initialize JWKS: %w", a.jwksErr)
	}

	keyfunc := a.jwks.getKeyfunc()
	if keyfunc == nil {
		return nil, fmt.Errorf("JWKS not available")
	}

	token, err := jwt.Parse(tokenString, keyfunc, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}))
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return token, nil
}

// extractRoleFromMapClaims extracts role from various possible token claim locations
func extractRoleFromMapClaims(mapClaims jwt.MapClaims) string {
	// Check realm_access.roles (Keycloak)
	if realmAccess, ok := mapClaims["realm_access"].(map[string]interface{}); ok {
		if roles, ok := realmAccess["roles"].([]interface{}); ok {
			// Priority order: admin > lead > viewer
			for _, priority := range []string{"admin", "lead", "viewer"} {
				for _, role := range roles {
					if roleStr, ok := role.(string); ok && roleStr == priority {
						return roleStr
					}
				}
			}
		}
	}

	// Check cognito:groups (AWS Cognito)
	if cognitoGroups, ok := mapClaims["cognito:groups"].([]interface{}); ok {
		for _, group := range cognitoGroups {
			if groupStr, ok := group.(string); ok {
				if strings.Contains(groupStr, "admin") {
					return "admin"
				}
				if strings.Contains(groupStr, "lead") {
					return "lead"
				}
			}
		}
	}

	return "viewer" // default role
}

// extractGroupsFromMapClaims extracts groups from token claims
func extractGroupsFromMapClaims(mapClaims jwt.MapClaims) []string {
	var groups []string

	for _, key := range []string{"groups", "cognito:groups"} {
		if claim, ok := mapClaims[key].([]interface{}); ok {
			for _, group := range claim {
				if groupStr, ok := group.(string); ok {
					groups = append(groups, groupStr)
				}
			}
		}
	}

	return groups
}

// extractZones parses zone codes from group paths like /zones/LON
func extractZones(groups []string) []string {
	var zones []string
	seen := make(map[string]bool)

	for _, group := range groups {
		if !strings.HasPrefix(group, zoneGroupPrefix) {
			continue
		}
		zone := strings.TrimPrefix(group, zoneGroupPrefix)
		if idx := strings.Index(zone, "/"); idx > 0 {
			zone = zone[:idx]
		}
		zone = strings.ToUpper(zone)
		if zone != "" && !seen[zone] {
			seen[zone] = true
			zones = append(zones, zone)
		}
	}

	return zones
}

// GetUserFromContext retrieves user claims from request context
func GetUserFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	return claims, ok
}

// IsZoneAllowed checks if a zone code is visible to the user
func (c *Claims) IsZoneAllowed(code string) bool {
	if c.AllZones {
		return true
	}
	for _, z := range c.AllowedZones {
		if strings.EqualFold(z, code) {
			return true
		}
	}
	return false
}

var roleRank = map[string]int{"viewer": 1, "lead": 2, "admin": 3}

// HasRole reports whether the user holds role or a higher one
func HasRole(c *Claims, role string) bool {
	if c == nil {
		return false
	}
	return roleRank[c.Role] >= roleRank[role] && roleRank[role] > 0
}
