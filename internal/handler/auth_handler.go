package handler

import (
	"vaops/internal/middleware"
	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	auth        *middleware.Authenticator
}

func NewAuthHandler(authService service.AuthService, auth *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService, auth: auth}
}

func (h *AuthHandler) RegisterRoutes(r Routes) {
	r.Public.POST("/register", h.Register)
	r.Public.POST("/login", h.Login)
	r.Public.POST("/refresh", h.RefreshToken)
	r.Public.POST("/logout", h.Logout)

	// unapproved pilots may still look at their own profile
	r.Authenticated.GET("/me", h.GetMe)
	r.Authenticated.PUT("/api/profile", h.UpdateProfile)

	r.Admin.GET("/pilots", h.ListPilots)
}

// Register creates a pilot account awaiting admin approval
// @Summary      Register pilot
// @Description  Creates a profile with is_approved=false and a pending registration approval
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration"
// @Success      201      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, profile)
}

// Login handles POST /login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload")
		return
	}

	tokenRes, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	h.auth.SetTokenCookies(c, tokenRes.AccessToken, tokenRes.RefreshToken)

	ok(c, tokenRes)
}

// RefreshToken handles POST /refresh to issue new access and refresh tokens
// @Summary      Refresh token
// @Description  Issues a new access token and refresh token using a valid refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest   true  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// cookie first, body as fallback
	refreshToken, cookieErr := c.Cookie("refresh_token")
	if cookieErr != nil || refreshToken == "" {
		var req service.RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request payload")
			return
		}
		refreshToken = req.RefreshToken
	}

	tokenRes, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		fail(c, err)
		return
	}

	h.auth.SetTokenCookies(c, tokenRes.AccessToken, tokenRes.RefreshToken)

	ok(c, tokenRes)
}

// Logout revokes the refresh token and clears auth cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")
	if refreshToken == "" {
		var req service.RefreshRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		fail(c, err)
		return
	}

	h.auth.ClearTokenCookies(c)
	ok(c, "Logged out")
}

// GetMe handles GET /me to return current authenticated user based on JWT
// @Summary      Get current user
// @Description  Profile, roles and admin flag of the caller
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, profile)
}

// UpdateProfile changes the caller's own profile
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateProfileRequest  true  "Profile fields"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, profile)
}

// ListPilots handles GET /api/admin/pilots
// @Summary      List pilots
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/admin/pilots [get]
func (h *AuthHandler) ListPilots(c *gin.Context) {
	p := pagination.Parse(c)

	pilots, total, err := h.authService.ListPilots(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p.Wrap(pilots, total))
}
