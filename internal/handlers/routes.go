package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
)

// Routes groups every handler set served under /v1.
type Routes struct {
	Health      *HealthHandlers
	Schemas     *SchemaHandlers
	CEP         *CEPHandlers
	Cadastro    *CadastroHandlers
	Proponentes *ProponenteHandlers
	Statistics  *StatisticsHandlers
	Projetos    *ProjetoHandlers
	Logs        *UserLogHandlers
	Admin       *AdminHandlers
}

// Register mounts the routes on v1.
func (r *Routes) Register(v1 *gin.RouterGroup, auth *middleware.Authenticator) {
	v1.GET("/health", r.Health.HealthCheck)
	v1.GET("/schemas", r.Schemas.ListSchemas)
	v1.GET("/schemas/:tipo", r.Schemas.GetSchema)
	v1.GET("/cep/:cep", r.CEP.GetAddress)

	cadastro := v1.Group("/cadastro", auth.OptionalAuth())
	{
		cadastro.POST("", r.Cadastro.StartCadastro)
		cadastro.GET("/:id", r.Cadastro.GetCadastro)
		cadastro.PATCH("/:id/respostas", r.Cadastro.SetRespostas)
		cadastro.POST("/:id/proximo", r.Cadastro.NextStep)
		cadastro.POST("/:id/anterior", r.Cadastro.PreviousStep)
		cadastro.POST("/:id/finalizar", r.Cadastro.FinishCadastro)
		cadastro.DELETE("/:id", r.Cadastro.DiscardCadastro)
	}

	authed := v1.Group("", auth.Auth())
	{
		authed.GET("/proponentes/me", r.Proponentes.ListMyProponentes)
		authed.GET("/proponentes/:id", r.Proponentes.GetProponente)

		authed.POST("/projetos", r.Projetos.CreateProjeto)
		authed.GET("/projetos/me", r.Projetos.ListMyProjetos)
		authed.POST("/projetos/:id/enviar", r.Projetos.SubmitProjeto)

		authed.POST("/logs", r.Logs.AppendLog)
	}

	admin := v1.Group("/admin", auth.Auth(), auth.RequireAdmin())
	{
		admin.GET("/cidades/:cityId/proponentes", r.Proponentes.ListCityProponentes)
		admin.GET("/cidades/:cityId/estatisticas", r.Statistics.GetCityStatistics)
		admin.GET("/cidades/:cityId/projetos", r.Projetos.ListCityProjetos)
		admin.GET("/cidades/:cityId/zonas", r.Admin.GetZonas)
		admin.PUT("/cidades/:cityId/zonas", r.Admin.SetZona)

		admin.PUT("/proponentes/:id", r.Proponentes.UpdateProponente)
		admin.DELETE("/proponentes/:id", r.Proponentes.DeleteProponente)

		admin.POST("/projetos/:id/avaliacoes", r.Projetos.EvaluateProjeto)
		admin.POST("/projetos/:id/decisao", r.Projetos.DecideProjeto)

		admin.GET("/logs", r.Logs.ListLogs)
		admin.GET("/logs/:email", r.Logs.GetLog)

		admin.PUT("/usuarios/:uid/roles", r.Admin.SetRoles)
	}
}
