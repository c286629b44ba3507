package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bernardev/good-trip-api/internal/model"
	"github.com/bernardev/good-trip-api/internal/repository"
	"github.com/bernardev/good-trip-api/internal/utils"
)

// AdminHandler exposes the operations surface: login and the listing of
// refunds waiting for manual approval. Approval itself happens
// out-of-band; there is deliberately no endpoint that resumes a pending
// record.
type AdminHandler struct {
	User         string // configured admin login
	PasswordHash string // bcrypt hash of the admin password
	JWTSecret    string
	TokenTTLMin  int
	Refunds      *repository.RefundStore
}

// NewAdminHandler constructs an AdminHandler from the configured
// credential and the refund store.
func NewAdminHandler(user, passwordHash, jwtSecret string, tokenTTLMin int, refunds *repository.RefundStore) *AdminHandler {
	return &AdminHandler{
		User:         user,
		PasswordHash: passwordHash,
		JWTSecret:    jwtSecret,
		TokenTTLMin:  tokenTTLMin,
		Refunds:      refunds,
	}
}

// Login handles POST /v1/admin/login. It validates the single configured
// admin credential and returns a short-lived bearer token.
func (h *AdminHandler) Login(c echo.Context) error {
	var body struct {
		User     string `json:"usuario"`
		Password string `json:"senha"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo da requisição inválido"})
	}
	if body.User != h.User || !utils.VerifyPassword(h.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciais inválidas"})
	}
	tok, err := utils.NewAdminToken(h.JWTSecret, h.User, h.TokenTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "falha ao gerar o token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":    tok.Token,
		"expiraEm": tok.Exp,
	})
}

// PendingRefunds handles GET /v1/admin/refunds/pending. It lists every
// REQUER_APROVACAO record still inside its approval window.
func (h *AdminHandler) PendingRefunds(c echo.Context) error {
	items, err := h.Refunds.ListPendingApprovals(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao listar estornos pendentes"})
	}
	if items == nil {
		items = []model.RefundRecord{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
