package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sdo-api/apperr"
	"sdo-api/services"
)

type listQuery struct {
	Skip  int    `form:"skip,default=0" binding:"min=0"`
	Limit int    `form:"limit,default=100" binding:"min=1,max=1000"`
	Year  *int   `form:"year"`
	Sort  string `form:"sort"`
}

type searchQuery struct {
	Q     string `form:"q" binding:"required"`
	Skip  int    `form:"skip,default=0" binding:"min=0"`
	Limit int    `form:"limit,default=100" binding:"min=1,max=1000"`
	Sort  string `form:"sort"`
}

func documentID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.BadRequest(fmt.Sprintf("invalid document id %q", c.Param("id")))
	}
	return id, nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperr.BadRequest(err.Error())
	}
	return nil
}

func setupDocumentRoutes(router *gin.Engine, svc *services.CatalogService, log *zap.Logger) {
	rg := router.Group("/documents")

	rg.GET("/", func(c *gin.Context) {
		var q listQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, log, err)
			return
		}
		docs, err := svc.ListDocuments(c.Request.Context(), services.ListParams{
			Skip: q.Skip, Limit: q.Limit, Year: q.Year, Sort: q.Sort,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	})

	rg.GET("/search/", func(c *gin.Context) {
		var q searchQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, log, err)
			return
		}
		docs, err := svc.SearchDocuments(c.Request.Context(), services.SearchParams{
			Query: q.Q, Skip: q.Skip, Limit: q.Limit, Sort: q.Sort,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, err := documentID(c)
		if err != nil {
			respondError(c, log, err)
			return
		}
		doc, err := svc.GetDocument(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	})

	rg.GET("/:id/ads-links", func(c *gin.Context) {
		id, err := documentID(c)
		if err != nil {
			respondError(c, log, err)
			return
		}
		links, err := svc.GetADSLinks(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, links)
	})
}

func setupStatsRoutes(router *gin.Engine, svc *services.CatalogService, log *zap.Logger) {
	router.GET("/stats/", func(c *gin.Context) {
		stats, err := svc.GetStats(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}
