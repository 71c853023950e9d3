package docprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/54b3r/kagent-go/internal/kerr"
)

// KnowledgeMarker is the fixed keyword clause every search query carries, so
// the provider's search index only returns documents that were explicitly
// tagged for this agent.
const KnowledgeMarker = "<KnowledgeMarker>:1"

// CredentialSource resolves a bearer token for a given OAuth scope. The two
// concrete uses are an app-only client-credential source (search/download)
// and a per-request On-Behalf-Of source scoped to the calling user
// (probeAccess, get_current_user) — see obo.go.
type CredentialSource interface {
	Token(ctx context.Context, scope string) (string, error)
}

// Client talks to the document platform's search and content REST surface,
// in the same hand-rolled-HTTP idiom as embedder.OpenAIEmbedder — no SDK for
// this surface exists anywhere in the reference corpus.
type Client struct {
	baseURL string
	creds   CredentialSource
	http    *http.Client
}

func NewClient(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) authedRequest(ctx context.Context, scope, method, path string, body any) (*http.Request, error) {
	token, err := c.creds.Token(ctx, scope)
	if err != nil {
		return nil, kerr.New("docprovider.authedRequest", kerr.KindUnauthenticated, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, kerr.New("docprovider.authedRequest", kerr.KindInternal, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, kerr.New("docprovider.authedRequest", kerr.KindInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// searchRequestEntity is one element of the search.query requests array.
type searchRequestEntity struct {
	EntityTypes []string     `json:"entityTypes"`
	Query       searchQuery  `json:"query"`
	From        int          `json:"from"`
	Size        int          `json:"size"`
	Region      string       `json:"region"`
	Fields      []string     `json:"fields"`
}

type searchQuery struct {
	QueryString string `json:"queryString"`
}

type searchRequest struct {
	Requests []searchRequestEntity `json:"requests"`
}

type searchHit struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	WebURL       string `json:"webUrl"`
	FileType     string `json:"fileType"`
	LastModified string `json:"lastModified"`
	SiteURL      string `json:"siteUrl"`
	SiteName     string `json:"siteName"`
	DriveID      string `json:"driveId"`
	DriveItemID  string `json:"driveItemId"`
}

type searchResponse struct {
	Value []struct {
		HitsContainers []struct {
			Hits []struct {
				Resource searchHit `json:"resource"`
			} `json:"hits"`
		} `json:"hitsContainers"`
	} `json:"value"`
}

var searchFields = []string{
	"id", "title", "webUrl", "fileType", "lastModifiedDateTime",
	"siteUrl", "siteName", "driveId", "driveItemId",
}

// Search discovers candidate documents. The query is composed from a fixed
// knowledge marker, a file-type whitelist, an optional site scope, and a
// last-modified range at day granularity in UTC. At most 500 hits.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]KnowledgeDocument, error) {
	maxHits := opts.MaxHits
	if maxHits <= 0 || maxHits > 500 {
		maxHits = 500
	}
	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = 30
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)

	queryParts := []string{
		KnowledgeMarker,
		"fileType:pdf OR fileType:doc OR fileType:docx OR fileType:aspx",
		fmt.Sprintf("lastModifiedDateTime>=%s", since.Format("2006-01-02")),
	}
	if opts.SiteURL != "" {
		queryParts = append(queryParts, fmt.Sprintf(`path:"%s"`, opts.SiteURL))
	}

	body := searchRequest{Requests: []searchRequestEntity{{
		EntityTypes: []string{"driveItem", "listItem"},
		Query:       searchQuery{QueryString: strings.Join(queryParts, " ")},
		From:        0,
		Size:        maxHits,
		Region:      "US",
		Fields:      searchFields,
	}}}

	req, err := c.authedRequest(ctx, DefaultScope, http.MethodPost, "/search/query", body)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := c.do(req, &result); err != nil {
		return nil, kerr.New("docprovider.Search", kerr.KindUpstream, err)
	}

	var docs []KnowledgeDocument
	for _, v := range result.Value {
		for _, hc := range v.HitsContainers {
			for _, h := range hc.Hits {
				docs = append(docs, hitToDocument(h.Resource))
			}
		}
	}
	return docs, nil
}

// SearchKeyword issues a free-text keyword search scoped to a single site,
// used by the chat agent's KQL-mode tool rather than the indexer's
// date-windowed crawl.
func (c *Client) SearchKeyword(ctx context.Context, query, siteURL string, maxHits int) ([]KnowledgeDocument, error) {
	if maxHits <= 0 || maxHits > 500 {
		maxHits = 25
	}

	queryParts := []string{KnowledgeMarker, "fileType:pdf OR fileType:doc OR fileType:docx OR fileType:aspx"}
	if siteURL != "" {
		queryParts = append(queryParts, fmt.Sprintf(`site:"%s"`, siteURL))
	}
	if query != "" {
		queryParts = append(queryParts, query)
	}

	body := searchRequest{Requests: []searchRequestEntity{{
		EntityTypes: []string{"driveItem", "listItem"},
		Query:       searchQuery{QueryString: strings.Join(queryParts, " ")},
		From:        0,
		Size:        maxHits,
		Region:      "US",
		Fields:      searchFields,
	}}}

	req, err := c.authedRequest(ctx, DefaultScope, http.MethodPost, "/search/query", body)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := c.do(req, &result); err != nil {
		return nil, kerr.New("docprovider.SearchKeyword", kerr.KindUpstream, err)
	}

	var docs []KnowledgeDocument
	for _, v := range result.Value {
		for _, hc := range v.HitsContainers {
			for _, h := range hc.Hits {
				docs = append(docs, hitToDocument(h.Resource))
			}
		}
	}
	return docs, nil
}

// hitToDocument converts one raw search hit into a KnowledgeDocument,
// ignoring unknown fields and inferring fileType from the filename when the
// provider omits it.
func hitToDocument(h searchHit) KnowledgeDocument {
	ft := FileType(h.FileType)
	if ft == "" {
		ft = FileTypeFromExtension(h.Title)
	}
	lastMod, _ := time.Parse(time.RFC3339, h.LastModified)
	return KnowledgeDocument{
		ID:           h.ID,
		Title:        h.Title,
		WebURL:       h.WebURL,
		FileType:     ft,
		LastModified: lastMod.UTC(),
		SiteURL:      h.SiteURL,
		SiteName:     h.SiteName,
		DriveID:      h.DriveID,
		DriveItemID:  h.DriveItemID,
	}
}

// DownloadBytes fetches a document's raw content, resolving either by
// driveId+driveItemId when present or by hostname+path otherwise.
func (c *Client) DownloadBytes(ctx context.Context, doc KnowledgeDocument) ([]byte, error) {
	var path string
	if doc.DriveID != "" && doc.DriveItemID != "" {
		path = fmt.Sprintf("/drives/%s/items/%s/content", doc.DriveID, doc.DriveItemID)
	} else {
		host, p, err := splitWebURL(doc.WebURL)
		if err != nil {
			return nil, kerr.New("docprovider.DownloadBytes", kerr.KindInvalidInput, err)
		}
		path = fmt.Sprintf("/sites/%s:%s:/content", host, p)
	}

	req, err := c.authedRequest(ctx, DefaultScope, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, kerr.New("docprovider.DownloadBytes", kerr.KindUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, kerr.Newf("docprovider.DownloadBytes", kerr.KindNotFound, "document %s not found", doc.ID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, kerr.Newf("docprovider.DownloadBytes", kerr.KindUpstream, "HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kerr.New("docprovider.DownloadBytes", kerr.KindUpstream, err)
	}
	return normalizeBytes(raw), nil
}

// normalizeBytes is the single funnel point for all three byte-container
// shapes a provider response may hand back: a freshly-read contiguous
// buffer (io.ReadAll's own allocation, already safe to retain), a
// view-into-shared-buffer that must be cloned before the caller's buffer is
// reused, or a string body converted via []byte(string(...)). Since
// io.ReadAll always returns a fresh allocation, this is a defensive clone
// only — the explicit call site makes the invariant visible rather than
// relying on io.ReadAll's implementation detail.
func normalizeBytes(b []byte) []byte {
	return bytes.Clone(b)
}

func splitWebURL(webURL string) (host, path string, err error) {
	trimmed := strings.TrimPrefix(webURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	idx := strings.IndexByte(trimmed, '/')
	if idx < 0 {
		return "", "", fmt.Errorf("docprovider: malformed webUrl %q", webURL)
	}
	return trimmed[:idx], trimmed[idx:], nil
}

type resolveSiteResponse struct {
	ID string `json:"id"`
}

// ResolveSite maps a host + site name to the provider's internal site id.
func (c *Client) ResolveSite(ctx context.Context, host, siteName string) (string, error) {
	path := fmt.Sprintf("/sites/%s:/sites/%s", host, siteName)
	req, err := c.authedRequest(ctx, DefaultScope, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var result resolveSiteResponse
	if err := c.do(req, &result); err != nil {
		return "", kerr.New("docprovider.ResolveSite", kerr.KindUpstream, err)
	}
	return result.ID, nil
}

type pagesResponse struct {
	Value []struct {
		WebParts []struct {
			InnerHTML string `json:"innerHtml"`
			Data      struct {
				Properties struct {
					Text string `json:"text"`
				} `json:"properties"`
			} `json:"data"`
		} `json:"webParts"`
	} `json:"value"`
}

// GetPageContent fetches the structured parts of an aspx page, with a raw
// page-file fallback left to the caller when the structured endpoint yields
// nothing (the extractor decides when to fall back, since only it knows
// whether the structured parts produced usable text).
func (c *Client) GetPageContent(ctx context.Context, siteID, pageName string) ([]PagePart, error) {
	path := fmt.Sprintf("/sites/%s/pages?$filter=name eq '%s'&$expand=webParts", siteID, pageName)
	req, err := c.authedRequest(ctx, DefaultScope, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result pagesResponse
	if err := c.do(req, &result); err != nil {
		return nil, kerr.New("docprovider.GetPageContent", kerr.KindUpstream, err)
	}

	var parts []PagePart
	for _, page := range result.Value {
		for _, wp := range page.WebParts {
			parts = append(parts, PagePart{HTML: wp.InnerHTML, Text: wp.Data.Properties.Text})
		}
	}
	return parts, nil
}

// ProbeAccess issues a minimal metadata fetch using the caller's delegated
// credential. 403 and 404 are classified "not accessible"; any other error
// (network timeout, 5xx, malformed response) is also "not accessible" —
// fail-closed by design, never fail-open on an ambiguous error.
func (c *Client) ProbeAccess(ctx context.Context, doc KnowledgeDocument, userCreds CredentialSource) bool {
	var path string
	if doc.DriveID != "" && doc.DriveItemID != "" {
		path = fmt.Sprintf("/drives/%s/items/%s?$select=id", doc.DriveID, doc.DriveItemID)
	} else {
		host, p, err := splitWebURL(doc.WebURL)
		if err != nil {
			return false
		}
		path = fmt.Sprintf("/sites/%s:%s?$select=id", host, p)
	}

	token, err := userCreds.Token(ctx, GraphScope)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

type graphUser struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Mail           string `json:"mail"`
	JobTitle       string `json:"jobTitle"`
	Department     string `json:"department"`
	CompanyName    string `json:"companyName"`
	OfficeLocation string `json:"officeLocation"`
}

type graphManager struct {
	DisplayName string `json:"displayName"`
}

// GetUserProfile fetches the caller's own directory profile using their
// delegated credential, including their manager's display name when Graph
// exposes one (a user with no manager, or one hidden by directory policy,
// simply yields an empty Manager field).
func (c *Client) GetUserProfile(ctx context.Context, userCreds CredentialSource) (UserProfile, error) {
	token, err := userCreds.Token(ctx, GraphScope)
	if err != nil {
		return UserProfile{}, kerr.New("docprovider.GetUserProfile", kerr.KindUnauthenticated, err)
	}

	const selectFields = "id,displayName,mail,jobTitle,department,companyName,officeLocation"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me?$select="+selectFields, nil)
	if err != nil {
		return UserProfile{}, kerr.New("docprovider.GetUserProfile", kerr.KindInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var u graphUser
	if err := c.do(req, &u); err != nil {
		return UserProfile{}, kerr.New("docprovider.GetUserProfile", kerr.KindUpstream, err)
	}

	profile := UserProfile{
		ID:         u.ID,
		Name:       u.DisplayName,
		Email:      u.Mail,
		Title:      u.JobTitle,
		Department: u.Department,
		Company:    u.CompanyName,
		Location:   u.OfficeLocation,
	}

	managerReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/manager?$select=displayName", nil)
	if err != nil {
		return profile, nil
	}
	managerReq.Header.Set("Authorization", "Bearer "+token)
	var m graphManager
	if err := c.do(managerReq, &m); err == nil {
		profile.Manager = m.DisplayName
	}
	return profile, nil
}

// ResolveSiteDescriptor parses a site webUrl of the form
// https://{host}/sites/{siteName} into its host and site-name segments and
// resolves it to the provider's internal site id.
func (c *Client) ResolveSiteDescriptor(ctx context.Context, siteURL string) (SiteDescriptor, error) {
	host, path, err := splitWebURL(siteURL)
	if err != nil {
		return SiteDescriptor{}, kerr.New("docprovider.ResolveSiteDescriptor", kerr.KindInvalidInput, err)
	}
	const marker = "/sites/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return SiteDescriptor{}, kerr.Newf("docprovider.ResolveSiteDescriptor", kerr.KindInvalidInput, "webUrl %q is not a site URL", siteURL)
	}
	siteName := strings.Trim(path[idx+len(marker):], "/")
	if slash := strings.IndexByte(siteName, '/'); slash >= 0 {
		siteName = siteName[:slash]
	}

	siteID, err := c.ResolveSite(ctx, host, siteName)
	if err != nil {
		return SiteDescriptor{}, err
	}
	return SiteDescriptor{SiteID: siteID, SiteURL: siteURL, SiteName: siteName, Host: host}, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return nil
}
