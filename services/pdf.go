package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sdo-api/apperr"
	"sdo-api/config"
	"sdo-api/metrics"
)

// Source ist eine PDF-Quelle hinter dem ADS-Link-Gateway.
type Source string

const (
	SourceArxiv     Source = "arxiv"
	SourcePublisher Source = "publisher"
)

// DefaultSources ist die feste Reihenfolge der automatischen Auflösung.
var DefaultSources = []Source{SourceArxiv, SourcePublisher}

// LinkType ist der Gateway-Pfad der Quelle.
func (s Source) LinkType() string {
	if s == SourcePublisher {
		return "PUB_PDF"
	}
	return "EPRINT_PDF"
}

// ParseSource prüft einen Quellnamen aus der Anfrage.
func ParseSource(raw string) (Source, error) {
	switch Source(raw) {
	case SourceArxiv, SourcePublisher:
		return Source(raw), nil
	}
	return "", apperr.BadRequest(fmt.Sprintf("Invalid source %q. Must be 'arxiv' or 'publisher'", raw))
}

// Candidate ist ein (Quelle, URL)-Paar, das bei der Auflösung probiert wird.
type Candidate struct {
	Source Source
	URL    string
}

// Candidates baut die Kandidatenliste; ohne explizite Quellen gilt DefaultSources.
func Candidates(gatewayBase, bibcode string, only ...Source) []Candidate {
	sources := only
	if len(sources) == 0 {
		sources = DefaultSources
	}
	out := make([]Candidate, 0, len(sources))
	for _, s := range sources {
		out = append(out, Candidate{Source: s, URL: GatewayURL(gatewayBase, bibcode, s)})
	}
	return out
}

const (
	// Antworten ohne PDF-Content-Type müssen größer sein, um als PDF zu gelten.
	minUnlabeledPDFSize = 10000
	htmlSniffWindow     = 1000
)

var htmlSignatures = [][]byte{
	[]byte("<!doctype html"),
	[]byte("<html"),
	[]byte("<head"),
	[]byte("<body"),
}

// LooksLikePDF entscheidet, ob eine Antwort ein echtes PDF oder eine Fehler-/Login-Seite ist.
// prefix sind die ersten Bytes des Bodys, length die Gesamtlänge.
func LooksLikePDF(contentType string, prefix []byte, length int) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "pdf") {
		return true
	}
	if length <= minUnlabeledPDFSize || strings.Contains(ct, "html") {
		return false
	}
	if len(prefix) > htmlSniffWindow {
		prefix = prefix[:htmlSniffWindow]
	}
	head := bytes.ToLower(prefix)
	for _, sig := range htmlSignatures {
		if bytes.Contains(head, sig) {
			return false
		}
	}
	return true
}

// PDF ist ein erfolgreich aufgelöstes Dokument.
type PDF struct {
	Source   Source
	Bibcode  string
	Body     []byte
	FinalURL string
}

// Filename ist der vorgeschlagene Dateiname, z.B. 2020ApJ...1A_arxiv.pdf.
func (p *PDF) Filename() string {
	return fmt.Sprintf("%s_%s.pdf", p.Bibcode, p.Source)
}

// CustomTransport setzt browserähnliche Header, damit Verlage seltener blockieren.
type CustomTransport struct {
	Transport http.RoundTripper
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/pdf,text/html;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return t.Transport.RoundTrip(req)
}

// PDFResolver holt Volltexte über das ADS-Link-Gateway.
type PDFResolver struct {
	GatewayBase string
	Timeout     time.Duration
	MaxBytes    int64
	Logger      *zap.Logger
}

// NewPDFResolver erstellt einen Resolver aus der Konfiguration.
func NewPDFResolver(cfg *config.Config, logger *zap.Logger) *PDFResolver {
	return &PDFResolver{
		GatewayBase: cfg.ADSGatewayBase,
		Timeout:     cfg.PDFFetchTimeout,
		MaxBytes:    cfg.PDFMaxBytes,
		Logger:      logger,
	}
}

// newClient erzeugt einen Client mit eigenem, begrenztem Verbindungspool pro Anfrage.
// Der Aufrufer muss release auf jedem Pfad aufrufen.
func (r *PDFResolver) newClient() (client *http.Client, release func()) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: r.Timeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxConnsPerHost:       10,
		MaxIdleConns:          5,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	client = &http.Client{
		Timeout:   r.Timeout,
		Transport: &CustomTransport{Transport: transport},
	}
	return client, transport.CloseIdleConnections
}

type fetchResult struct {
	status      int
	contentType string
	body        []byte
	finalURL    string
}

func (res *fetchResult) isPDF() bool {
	return LooksLikePDF(res.contentType, res.body, len(res.body))
}

func (r *PDFResolver) fetch(ctx context.Context, client *http.Client, c Candidate) (*fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limit := r.MaxBytes
	if limit <= 0 {
		limit = 100 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", c.URL, limit)
	}

	return &fetchResult{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
		finalURL:    resp.Request.URL.String(),
	}, nil
}

// Resolve probiert die Kandidaten nacheinander; der erste gültige PDF-Treffer gewinnt.
// Netzwerkfehler, Timeouts und Fehlerseiten führen zum nächsten Kandidaten.
func (r *PDFResolver) Resolve(ctx context.Context, bibcode string, sources ...Source) (*PDF, error) {
	client, release := r.newClient()
	defer release()

	log := r.Logger.With(zap.String("bibcode", bibcode))
	for _, c := range Candidates(r.GatewayBase, bibcode, sources...) {
		clog := log.With(zap.String("source", string(c.Source)), zap.String("url", c.URL))

		res, err := r.fetch(ctx, client, c)
		if err != nil {
			r.count(c.Source, transportResult(err))
			clog.Warn("PDF source unreachable, trying next candidate", zap.Error(err))
			continue
		}
		if res.status != http.StatusOK {
			r.count(c.Source, "status")
			clog.Info("PDF source returned non-200 status", zap.Int("status", res.status))
			continue
		}
		if !res.isPDF() {
			r.count(c.Source, "not_pdf")
			clog.Info("Response does not look like a PDF",
				zap.String("content_type", res.contentType), zap.Int("bytes", len(res.body)))
			continue
		}

		r.count(c.Source, "ok")
		clog.Info("PDF resolved", zap.Int("bytes", len(res.body)), zap.String("final_url", res.finalURL))
		return &PDF{Source: c.Source, Bibcode: bibcode, Body: res.body, FinalURL: res.finalURL}, nil
	}

	return nil, apperr.NotFound("PDF not available from either source")
}

// ResolveSingle holt das PDF aus genau einer Quelle und meldet Fehler feiner
// aufgeschlüsselt als Resolve: Timeout 504, Verbindungsfehler und Upstream-Status 502.
func (r *PDFResolver) ResolveSingle(ctx context.Context, bibcode string, source Source) (*PDF, error) {
	client, release := r.newClient()
	defer release()

	c := Candidates(r.GatewayBase, bibcode, source)[0]
	log := r.Logger.With(zap.String("bibcode", bibcode), zap.String("source", string(source)), zap.String("url", c.URL))

	res, err := r.fetch(ctx, client, c)
	if err != nil {
		result := transportResult(err)
		r.count(source, result)
		log.Warn("PDF fetch failed", zap.Error(err))
		if result == "timeout" {
			return nil, apperr.UpstreamTimeout(fmt.Sprintf("Timeout while fetching PDF from %s source", source), err)
		}
		return nil, apperr.UpstreamError(fmt.Sprintf("Failed to fetch PDF from %s source", source), err)
	}

	switch {
	case res.status == http.StatusNotFound:
		r.count(source, "status")
		return nil, apperr.NotFound(fmt.Sprintf("PDF not found at %s source", source))
	case res.status != http.StatusOK:
		r.count(source, "status")
		log.Warn("PDF source returned error status", zap.Int("status", res.status))
		return nil, apperr.UpstreamError(fmt.Sprintf("%s source returned HTTP %d", source, res.status), nil)
	}

	if !res.isPDF() {
		r.count(source, "not_pdf")
		log.Info("Response does not look like a PDF",
			zap.String("content_type", res.contentType), zap.Int("bytes", len(res.body)))
		return nil, apperr.NotFound(fmt.Sprintf("Response from %s source does not appear to be a valid PDF (possibly a login or error page)", source))
	}

	r.count(source, "ok")
	log.Info("PDF resolved", zap.Int("bytes", len(res.body)), zap.String("final_url", res.finalURL))
	return &PDF{Source: source, Bibcode: bibcode, Body: res.body, FinalURL: res.finalURL}, nil
}

func (r *PDFResolver) count(source Source, result string) {
	metrics.PDFResolutions.WithLabelValues(string(source), result).Inc()
}

func transportResult(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timeout"
	}
	return "unreachable"
}
