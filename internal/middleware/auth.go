package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	sessionKey = "session"
	adminKey   = "is_admin"

	msgUnauthenticated = "Usuário não autenticado"
	msgInvalidToken    = "Token inválido"
	msgAccessDenied    = "Acesso negado"
)

// TokenVerifier turns a bearer token into the caller's session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Session, error)
}

// AdminChecker decides whether a user is an administrator.
// *services.ProfileService implements it.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// GatewayVerifier reads the claims of tokens that the API gateway has
// already verified.
type GatewayVerifier struct{}

// Verify decodes the token payload without checking its signature.
func (GatewayVerifier) Verify(_ context.Context, token string) (*models.Session, error) {
	claims, err := extractClaims(token)
	if err != nil {
		return nil, err
	}
	uid := claims.UID()
	if uid == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &models.Session{UID: uid, Email: strings.ToLower(claims.Email)}, nil
}

// extractClaims extracts the claims from the JWT token
func extractClaims(token string) (*models.GatewayClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token format")
	}

	claimsBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}

	var claims models.GatewayClaims
	if err := json.Unmarshal(claimsBytes, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	return &claims, nil
}

// FirebaseVerifier checks ID tokens with the Firebase Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initializes the Firebase app. Without a credentials
// file the SDK falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase Auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify validates the ID token signature, audience and expiry.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*models.Session, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	email, _ := tok.Claims["email"].(string)
	return &models.Session{UID: tok.UID, Email: strings.ToLower(email)}, nil
}

// Authenticator resolves sessions and admin rights for gin routes.
type Authenticator struct {
	verifier TokenVerifier
	admins   AdminChecker
	logger   *zap.Logger
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(verifier TokenVerifier, admins AdminChecker, logger *zap.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, admins: admins, logger: logger.Named("auth")}
}

var errNoToken = errors.New("authorization header is required")

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return parts[1], nil
}

// authenticate stores the session of a valid token. It reports false after
// aborting the request.
func (a *Authenticator) authenticate(c *gin.Context, required bool) bool {
	token, err := bearerToken(c)
	if errors.Is(err, errNoToken) && !required {
		return true
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthenticated})
		return false
	}

	session, err := a.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		a.logger.Warn("failed to verify token", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgInvalidToken})
		return false
	}
	c.Set(sessionKey, session)
	return true
}

// Auth rejects requests without a valid bearer token.
func (a *Authenticator) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.authenticate(c, true) {
			c.Next()
		}
	}
}

// OptionalAuth accepts anonymous requests but still rejects bad tokens.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.authenticate(c, false) {
			c.Next()
		}
	}
}

// RequireAdmin lets only administrators through. It must run after Auth.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthenticated})
			return
		}
		isAdmin, err := a.IsAdmin(c)
		if err != nil {
			a.logger.Error("failed to check admin role", zap.String("uid", session.UID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro ao verificar permissões"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgAccessDenied})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the caller is an administrator. The answer is
// memoized on the request.
func (a *Authenticator) IsAdmin(c *gin.Context) (bool, error) {
	if v, ok := c.Get(adminKey); ok {
		return v.(bool), nil
	}
	session := SessionFrom(c)
	if session == nil {
		return false, nil
	}
	isAdmin, err := a.admins.IsAdmin(c.Request.Context(), session.UID)
	if err != nil {
		return false, err
	}
	c.Set(adminKey, isAdmin)
	return isAdmin, nil
}

// SessionFrom returns the caller's session or nil for anonymous requests.
func SessionFrom(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}
