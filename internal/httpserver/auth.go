package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func loginHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(c, &domain.ValidationError{
				Message: "Email and password are required.",
				Fields: map[string][]string{
					"email":    {"The email field is required."},
					"password": {"The password field is required."},
				},
			})
			return
		}
		u, token, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Token: token, User: u})
	}
}

func registerHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req usersvc.RegisterInput
		if !bindJSON(c, &req) {
			return
		}
		u, err := auth.Register(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, registerResponse{Message: "Registration successful", User: u})
	}
}

func logoutHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), c.GetString(tokenCtxKey)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
	}
}

func profileHandler(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
