package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/companydesk/internal/transport/http/handler"
	"github.com/ErlanBelekov/companydesk/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, companyHandler *handler.CompanyHandler, auth middleware.Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Session routes
	a := r.Group("/auth")
	a.POST("/login", authHandler.Login)
	a.POST("/check", authHandler.Check)
	a.POST("/logout", authHandler.Logout)

	// Protected company routes
	companies := r.Group("/companies", middleware.Session(auth, logger))
	companies.GET("", companyHandler.List)
	companies.GET("/lookup/:siret", companyHandler.Lookup)
	companies.POST("", companyHandler.Create)
	companies.PUT("", companyHandler.Update)
	companies.DELETE("/:siret", companyHandler.Delete)

	return r
}
