package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
)

// ZoneStore keeps the bairro to zona table of each city.
// *services.ZoneService implements it.
type ZoneStore interface {
	Mapping(ctx context.Context, cityID string) (map[string]models.Zona, error)
	SetZona(ctx context.Context, cityID, bairro string, zona models.Zona) (*models.ZonaBairro, error)
}

// RoleStore edits authorization roles.
// *services.ProfileService implements it.
type RoleStore interface {
	SetRoles(ctx context.Context, uid, email string, roles []string) (*models.UserProfile, error)
}

// ZonaRequest maps a neighbourhood to a zone.
type ZonaRequest struct {
	Bairro string      `json:"bairro" binding:"required" example:"Copacabana"`
	Zona   models.Zona `json:"zona" binding:"required" example:"sul"`
}

// ZonasResponse is the zone table of a city keyed by normalized bairro.
type ZonasResponse struct {
	CityID string                 `json:"cityId"`
	Zonas  map[string]models.Zona `json:"zonas"`
}

// RolesRequest replaces the roles of a user.
type RolesRequest struct {
	Email string   `json:"email,omitempty" example:"gestor@prefeitura.rio"`
	Roles []string `json:"roles" example:"admin"`
}

// AdminHandlers manages zone tables and user roles.
type AdminHandlers struct {
	zones  ZoneStore
	roles  RoleStore
	logger *zap.Logger
}

// NewAdminHandlers creates admin handlers.
func NewAdminHandlers(zones ZoneStore, roles RoleStore, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{zones: zones, roles: roles, logger: logger}
}

// GetZonas godoc
// @Summary Consultar zonas dos bairros de uma cidade
// @Tags admin
// @Produce json
// @Param cityId path string true "ID da cidade"
// @Security BearerAuth
// @Success 200 {object} ZonasResponse
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /admin/cidades/{cityId}/zonas [get]
func (h *AdminHandlers) GetZonas(c *gin.Context) {
	cityID := c.Param("cityId")
	mapping, err := h.zones.Mapping(c.Request.Context(), cityID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if mapping == nil {
		mapping = map[string]models.Zona{}
	}
	c.JSON(http.StatusOK, ZonasResponse{CityID: cityID, Zonas: mapping})
}

// SetZona godoc
// @Summary Definir zona de um bairro
// @Description Associa um bairro a uma das zonas (norte, sul, leste, oeste, centro). O nome do bairro é normalizado.
// @Tags admin
// @Accept json
// @Produce json
// @Param cityId path string true "ID da cidade"
// @Param data body ZonaRequest true "Bairro e zona"
// @Security BearerAuth
// @Success 200 {object} models.ZonaBairro
// @Failure 400 {object} ErrorResponse "Zona inválida"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Router /admin/cidades/{cityId}/zonas [put]
func (h *AdminHandlers) SetZona(c *gin.Context) {
	var req ZonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	row, err := h.zones.SetZona(c.Request.Context(), c.Param("cityId"), req.Bairro, req.Zona)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// SetRoles godoc
// @Summary Definir papéis de um usuário
// @Description Substitui os papéis de autorização de um usuário. O papel de administrador libera as rotas /admin.
// @Tags admin
// @Accept json
// @Produce json
// @Param uid path string true "ID do usuário no provedor de autenticação"
// @Param data body RolesRequest true "Papéis"
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Dados inválidos"
// @Failure 403 {object} ErrorResponse "Acesso negado"
// @Router /admin/usuarios/{uid}/roles [put]
func (h *AdminHandlers) SetRoles(c *gin.Context) {
	var req RolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.roles.SetRoles(c.Request.Context(), c.Param("uid"), req.Email, req.Roles)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("user roles updated",
		zap.String("uid", profile.UID),
		zap.Strings("roles", profile.Roles))
	c.JSON(http.StatusOK, profile)
}
