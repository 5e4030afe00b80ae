package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ecoloop/internal/model"
)

// Identity is the authenticated caller extracted from the verified JWT.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

// CurrentIdentity reads the caller's identity from the token the JWT
// middleware stored on the context.
func CurrentIdentity(c echo.Context) (*Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}

	idStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user id in token")
	}
	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if !model.ValidRole(role) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid role in token")
	}

	return &Identity{UserID: userID, Email: email, Role: role}, nil
}
