package models

// ADSLinks bündelt alle aus Bibcode und ID abgeleiteten Links eines Dokuments.
type ADSLinks struct {
	DocumentID     int64          `json:"document_id"`
	Bibcode        string         `json:"bibcode"`
	ADSPage        string         `json:"ads_page"`
	PDFSources     PDFSourceLinks `json:"pdf_sources"`
	Download       DownloadLinks  `json:"download"`
	CitationExport CitationLinks  `json:"citation_export"`
	Related        RelatedLinks   `json:"related"`
}

// PDFSourceLinks zeigt direkt auf das ADS-Link-Gateway.
type PDFSourceLinks struct {
	Arxiv     string `json:"arxiv"`
	Publisher string `json:"publisher"`
}

// DownloadLinks sind relativ zu dieser API.
type DownloadLinks struct {
	Auto      string `json:"auto"`
	Arxiv     string `json:"arxiv"`
	Publisher string `json:"publisher"`
}

type CitationLinks struct {
	BibTeX    string `json:"bibtex"`
	BibTeXAPI string `json:"bibtex_api"`
}

type RelatedLinks struct {
	References string `json:"references"`
	Citations  string `json:"citations"`
	Similar    string `json:"similar"`
}

// YearRange ist das kleinste und größte Publikationsjahr im Katalog.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Stats fasst den Katalog zusammen. YearRange ist nil, wenn kein gültiges Jahr existiert.
type Stats struct {
	TotalDocuments int64      `json:"total_documents"`
	YearRange      *YearRange `json:"year_range"`
}
