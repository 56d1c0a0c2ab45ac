package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"arxiv2epub/internal/ident"
	"arxiv2epub/internal/services"
)

// Metadata is the subset of the Atom feed entry the pipeline uses.
type Metadata struct {
	ID      string
	Title   string
	Authors []string
	Summary string
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// FetchMetadata queries the export API for the paper's title and authors.
// Callers treat failures as non-fatal; conversion proceeds with the bare
// identifier.
func (c *Client) FetchMetadata(ctx context.Context, id ident.ID) (*Metadata, error) {
	queryURL := c.apiQueryURL(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "metadata", "build request", queryURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "metadata", "query export api", queryURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrFetch, "metadata", "query export api",
			fmt.Sprintf("%s returned HTTP %d", queryURL, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "metadata", "read response body", queryURL, err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, services.Wrap(services.ErrFetch, "metadata", "parse atom feed", queryURL, err)
	}
	if len(feed.Entries) == 0 {
		return nil, services.Wrap(services.ErrFetch, "metadata", "parse atom feed", "no entry for "+id.Canonical, nil)
	}

	entry := feed.Entries[0]
	meta := &Metadata{
		ID:      id.Canonical,
		Title:   collapseWhitespace(entry.Title),
		Summary: collapseWhitespace(entry.Summary),
	}
	for _, author := range entry.Authors {
		if name := strings.TrimSpace(author.Name); name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	}
	if meta.Title == "" {
		return nil, services.Wrap(services.ErrFetch, "metadata", "parse atom feed", "entry without title", nil)
	}
	return meta, nil
}

// The API wraps long titles across lines with leading whitespace.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
