package middleware

import (
	"net/http"
	"strings"

	"vaops/internal/model"
	"vaops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "userID"
	ContextRole     = "userRole"
	ContextApproved = "approved"
)

// Authenticator validates access tokens issued by service.AuthService and manages the auth cookies.
type Authenticator struct {
	secret []byte
	// cross-origin deployments need SameSite=None + Secure cookies
	crossSite bool
}

func NewAuthenticator(secret []byte, release bool) *Authenticator {
	return &Authenticator{secret: secret, crossSite: release}
}

func (a *Authenticator) Secret() []byte {
	return a.secret
}

func (a *Authenticator) cookieMode() (http.SameSite, bool) {
	if a.crossSite {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func (a *Authenticator) SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	sameSite, secure := a.cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func (a *Authenticator) ClearTokenCookies(c *gin.Context) {
	sameSite, secure := a.cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// authenticate reads the token from the cookie or the Authorization header, validates it and
// stores the claims on the context. It aborts and returns false on failure.
func (a *Authenticator) authenticate(c *gin.Context) bool {
	if _, done := c.Get(ContextUserID); done {
		return true
	}

	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return false
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return false
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
		return false
	}
	role, ok := claims["role"].(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return false
	}
	approved, _ := claims["approved"].(bool)

	c.Set(ContextUserID, userID)
	c.Set(ContextRole, role)
	c.Set(ContextApproved, approved)
	return true
}

// RequireAuth accepts any valid access token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireRole validates the JWT token and checks if the user's role exists in the allowedRoles list
func (a *Authenticator) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}

		userRole := c.GetString(ContextRole)
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// RequireApproved keeps pilots whose registration is still under review out of operational routes.
// Admins always pass.
func (a *Authenticator) RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}
		if c.GetString(ContextRole) != model.RoleAdmin && !c.GetBool(ContextApproved) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "account pending approval"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user of the request.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRole) == model.RoleAdmin
}
