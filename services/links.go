package services

import (
	"fmt"

	"sdo-api/models"
)

// LinkBases sind die festen URL-Präfixe, aus denen alle ADS-Links gebaut werden.
type LinkBases struct {
	Gateway  string // z.B. https://ui.adsabs.harvard.edu/link_gateway
	Abstract string // z.B. https://ui.adsabs.harvard.edu/abs
	API      string // z.B. https://api.adsabs.harvard.edu/v1
}

// GatewayURL baut die Gateway-URL für eine Quelle, z.B. {gateway}/{bibcode}/EPRINT_PDF.
func GatewayURL(gatewayBase, bibcode string, source Source) string {
	return fmt.Sprintf("%s/%s/%s", gatewayBase, bibcode, source.LinkType())
}

// BuildADSLinks leitet das Link-Bündel rein aus Bibcode und Dokument-ID ab.
func BuildADSLinks(bases LinkBases, id int64, bibcode string) models.ADSLinks {
	abs := func(suffix string) string {
		return fmt.Sprintf("%s/%s/%s", bases.Abstract, bibcode, suffix)
	}
	download := fmt.Sprintf("/documents/%d/download-pdf", id)

	return models.ADSLinks{
		DocumentID: id,
		Bibcode:    bibcode,
		ADSPage:    models.AbstractURL(bases.Abstract, bibcode),
		PDFSources: models.PDFSourceLinks{
			Arxiv:     GatewayURL(bases.Gateway, bibcode, SourceArxiv),
			Publisher: GatewayURL(bases.Gateway, bibcode, SourcePublisher),
		},
		Download: models.DownloadLinks{
			Auto:      download,
			Arxiv:     download + "/" + string(SourceArxiv),
			Publisher: download + "/" + string(SourcePublisher),
		},
		CitationExport: models.CitationLinks{
			BibTeX:    abs("exportcitation"),
			BibTeXAPI: fmt.Sprintf("%s/export/bibtex/%s", bases.API, bibcode),
		},
		Related: models.RelatedLinks{
			References: abs("references"),
			Citations:  abs("citations"),
			Similar:    abs("similar"),
		},
	}
}
