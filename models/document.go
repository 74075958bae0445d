package models

// Document repräsentiert einen Katalogeintrag, wie er vom Ingestion-Job aus NASA ADS übernommen wird.
// Einträge werden nach dem Import nicht mehr verändert.
type Document struct {
	ID              int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title           string  `json:"title" gorm:"type:text;not null"`
	Abstract        string  `json:"abstract" gorm:"type:text;not null"`
	Authors         string  `json:"authors" gorm:"type:text;not null"`
	PublicationDate string  `json:"publication_date" gorm:"index"` // leer oder beginnt mit "YYYY"
	DOI             *string `json:"doi"`
	Bibcode         *string `json:"bibcode" gorm:"index"`
	CitationCount   *int    `json:"citation_count"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Document) TableName() string {
	return "sdo_documents"
}

// HasBibcode meldet, ob der Eintrag für PDF-Auflösung und ADS-Links verwendbar ist.
func (d *Document) HasBibcode() bool {
	return d.Bibcode != nil && *d.Bibcode != ""
}

// DocumentPublic ist die öffentliche Sicht auf ein Document inklusive abgeleitetem ADS-Link.
type DocumentPublic struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Abstract        string  `json:"abstract"`
	Authors         string  `json:"authors"`
	PublicationDate string  `json:"publication_date"`
	DOI             *string `json:"doi"`
	Bibcode         *string `json:"bibcode"`
	CitationCount   *int    `json:"citation_count"`
	ADSURL          *string `json:"ads_url"`
}

// ToPublic projiziert ein Document auf die öffentliche Sicht. absBase ist die
// Basis-URL der ADS-Abstract-Seiten.
func ToPublic(d Document, absBase string) DocumentPublic {
	pub := DocumentPublic{
		ID:              d.ID,
		Title:           d.Title,
		Abstract:        d.Abstract,
		Authors:         d.Authors,
		PublicationDate: d.PublicationDate,
		DOI:             d.DOI,
		Bibcode:         d.Bibcode,
		CitationCount:   d.CitationCount,
	}
	if d.HasBibcode() {
		u := AbstractURL(absBase, *d.Bibcode)
		pub.ADSURL = &u
	}
	return pub
}

// ToPublicList projiziert eine Liste; das Ergebnis ist nie nil.
func ToPublicList(docs []Document, absBase string) []DocumentPublic {
	out := make([]DocumentPublic, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToPublic(d, absBase))
	}
	return out
}

// AbstractURL baut den Link auf die ADS-Abstract-Seite eines Bibcodes.
func AbstractURL(absBase, bibcode string) string {
	return absBase + "/" + bibcode + "/abstract"
}
