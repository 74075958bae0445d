// Package api stellt die HTTP-Schnittstelle des Katalogs und des PDF-Proxys bereit.
package api

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sdo-api/apperr"
	"sdo-api/config"
	"sdo-api/services"
)

// Deps sind die Abhängigkeiten, die an die Routen übergeben werden.
type Deps struct {
	Catalog  *services.CatalogService
	Resolver *services.PDFResolver
	Logger   *zap.Logger
	// Ready prüft Abhängigkeiten für /readyz; nil bedeutet immer bereit.
	Ready func(ctx context.Context) error
}

// NewRouter baut den gin-Router mit Middleware und allen Routen.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(d.Logger))
	router.Use(observe())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupRootRoutes(router, d)
	setupDocumentRoutes(router, d.Catalog, d.Logger)
	setupPDFRoutes(router, d.Catalog, d.Resolver, d.Logger)
	setupStatsRoutes(router, d.Catalog, d.Logger)

	return router
}

func setupRootRoutes(router *gin.Engine, d Deps) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": config.APITitle,
			"version": config.APIVersion,
			"docs":    "/docs",
		})
	})

	router.GET("/docs", func(c *gin.Context) {
		type route struct {
			Method string `json:"method"`
			Path   string `json:"path"`
		}
		routes := []route{}
		for _, r := range router.Routes() {
			routes = append(routes, route{Method: r.Method, Path: r.Path})
		}
		sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
		c.JSON(http.StatusOK, gin.H{
			"title":       config.APITitle,
			"description": config.APIDescription,
			"version":     config.APIVersion,
			"routes":      routes,
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(c.Request.Context()); err != nil {
				d.Logger.Warn("Readiness check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

// respondError schreibt {"detail": ...} mit dem Statuscode der Fehlerklasse.
// Interne Fehler werden geloggt und nicht nach außen gegeben.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		if appErr.Kind == apperr.KindUpstreamError || appErr.Kind == apperr.KindUpstreamTimeout {
			log.Warn("Upstream failure", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		c.AbortWithStatusJSON(appErr.Kind.Status(), gin.H{"detail": appErr.Detail})
		return
	}
	log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}
