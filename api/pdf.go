package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sdo-api/services"
)

func setupPDFRoutes(router *gin.Engine, svc *services.CatalogService, resolver *services.PDFResolver, log *zap.Logger) {
	rg := router.Group("/documents/:id")

	// Automatische Auflösung: arXiv vor Verlag, außer eine Quelle ist angegeben.
	rg.GET("/download-pdf", func(c *gin.Context) {
		id, err := documentID(c)
		if err != nil {
			respondError(c, log, err)
			return
		}
		var sources []services.Source
		if raw := c.Query("source"); raw != "" {
			src, err := services.ParseSource(raw)
			if err != nil {
				respondError(c, log, err)
				return
			}
			sources = append(sources, src)
		}

		doc, err := svc.LoadWithBibcode(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		// Ausgehende Abrufe laufen weiter, auch wenn der Client die Verbindung trennt.
		pdf, err := resolver.Resolve(context.WithoutCancel(c.Request.Context()), *doc.Bibcode, sources...)
		if err != nil {
			respondError(c, log, err)
			return
		}
		writePDF(c, pdf)
	})

	rg.GET("/download-pdf/:pdf_type", func(c *gin.Context) {
		id, err := documentID(c)
		if err != nil {
			respondError(c, log, err)
			return
		}
		src, err := services.ParseSource(c.Param("pdf_type"))
		if err != nil {
			respondError(c, log, err)
			return
		}

		doc, err := svc.LoadWithBibcode(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		pdf, err := resolver.ResolveSingle(context.WithoutCancel(c.Request.Context()), *doc.Bibcode, src)
		if err != nil {
			respondError(c, log, err)
			return
		}
		writePDF(c, pdf)
	})
}

func writePDF(c *gin.Context, pdf *services.PDF) {
	c.DataFromReader(http.StatusOK, int64(len(pdf.Body)), "application/pdf", bytes.NewReader(pdf.Body), map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%s", strconv.Quote(pdf.Filename())),
		"X-PDF-Source":        string(pdf.Source),
		"X-Original-URL":      pdf.FinalURL,
	})
}
