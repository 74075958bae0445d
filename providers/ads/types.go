package ads

import "strings"

// Fields sind die Felder, die bei jeder Suche angefordert werden.
var Fields = []string{"id", "title", "abstract", "author", "pubdate", "year", "doi", "bibcode", "citation_count"}

// SearchResponse ist die Top-Level-Struktur der ADS-Suchantwort.
type SearchResponse struct {
	Response struct {
		NumFound int      `json:"numFound"`
		Start    int      `json:"start"`
		Docs     []Record `json:"docs"`
	} `json:"response"`
}

// Record ist ein einzelner Treffer.
type Record struct {
	ID            string   `json:"id"`
	Title         []string `json:"title"`
	Abstract      string   `json:"abstract"`
	Author        []string `json:"author"`
	PubDate       string   `json:"pubdate"`
	Year          string   `json:"year"`
	DOI           []string `json:"doi"`
	Bibcode       string   `json:"bibcode"`
	CitationCount *int     `json:"citation_count"`
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
