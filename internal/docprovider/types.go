// Package docprovider wraps the hosted document platform: search, metadata,
// content download, and per-user access probing. The wire shapes here match
// a SharePoint/Graph-flavored search-and-content API, expressed as a
// hand-rolled net/http JSON client in the same idiom as the embedder
// package's REST clients — no SDK for this surface exists anywhere in the
// reference corpus.
package docprovider

import "time"

// FileType is one of the content kinds the extractor knows how to decode.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDoc     FileType = "doc"
	FileTypeDocx    FileType = "docx"
	FileTypeAspx    FileType = "aspx"
	FileTypeUnknown FileType = "unknown"
)

// FileTypeFromExtension infers a FileType from a filename when the provider
// does not report one explicitly.
func FileTypeFromExtension(name string) FileType {
	switch ext(name) {
	case ".pdf":
		return FileTypePDF
	case ".doc":
		return FileTypeDoc
	case ".docx":
		return FileTypeDocx
	case ".aspx":
		return FileTypeAspx
	default:
		return FileTypeUnknown
	}
}

func ext(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return toLower(name[i:])
		}
	}
	return ""
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// KnowledgeDocument is one candidate document discovered by search. It is
// immutable and discarded after a single pipeline pass.
type KnowledgeDocument struct {
	ID           string
	Title        string
	WebURL       string
	FileType     FileType
	LastModified time.Time
	SiteURL      string
	SiteName     string
	DriveID      string
	DriveItemID  string
}

// SearchOptions bounds a provider search call.
type SearchOptions struct {
	SiteURL  string // optional path:"<siteUrl>" scope
	DaysBack int    // last-modified window [now-DaysBack, now], UTC, day granularity
	MaxHits  int    // capped at 500
}

// PagePart is one structured part of an aspx page, as returned by
// getPageContent.
type PagePart struct {
	HTML string
	Text string // fallback: data.properties.text
}

// UserProfile is the delegated caller's directory profile, fetched with
// their own credential so the agent never sees more than the user
// themselves could see.
type UserProfile struct {
	ID         string
	Name       string
	Email      string
	Title      string
	Department string
	Company    string
	Location   string
	Manager    string // empty if the user has no manager or it is not exposed
}

// SiteDescriptor identifies the site a chat context is scoped to.
type SiteDescriptor struct {
	SiteID   string
	SiteURL  string
	SiteName string
	Host     string
}
