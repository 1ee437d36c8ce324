// Package dblp is a client for the dblp.org publication search API and its
// per-record BibTeX export.
package dblp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"bibrarian/src/internal/bibtex"
	"bibrarian/src/internal/httpx"
	"bibrarian/src/internal/sanitize"
	"bibrarian/src/internal/schema"
)

// Source is the label shown for entries from this repository.
const Source = "dblp.org"

const (
	searchURL = "https://dblp.org/search/publ/api"
	recordURL = "https://dblp.org/rec/bib2/"
)

var client httpx.Doer = httpx.NewClient()

// SetHTTPClient allows tests to inject a fake HTTP client.
func SetHTTPClient(c httpx.Doer) { client = c }

// Hit is one publication from the search API. The JSON is irregular:
// authors may be a single object or a list, and may be strings or
// {"text": ...} objects.
type Hit struct {
	Info struct {
		Key     string     `json:"key"`
		Title   stringish  `json:"title"`
		Year    stringish  `json:"year"`
		Venue   stringish  `json:"venue"`
		EE      string     `json:"ee"`
		Authors hitAuthors `json:"authors"`
	} `json:"info"`
}

type searchResponse struct {
	Result struct {
		Hits struct {
			Hit []Hit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// Search queries the publication API and maps hits to entries. A blank
// query returns nothing without a round trip.
func Search(ctx context.Context, query string) ([]schema.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	u := searchURL + "?q=" + url.QueryEscape(query) + "&format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpx.SetUA(req)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("dblp: http %d: %s", resp.StatusCode, string(b))
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("dblp: decode search response: %w", err)
	}
	out := make([]schema.Entry, 0, len(sr.Result.Hits.Hit))
	for _, h := range sr.Result.Hits.Hit {
		out = append(out, h.Entry())
	}
	return out, nil
}

// Entry converts a hit into a display entry. Record stays nil; the full
// BibTeX is fetched lazily on selection.
func (h Hit) Entry() schema.Entry {
	e := schema.Entry{
		Key:      schema.DblpKey(h.Info.Key),
		Source:   Source,
		RemoteID: h.Info.Key,
		Title:    sanitize.StripTeX(orUnknown(string(h.Info.Title))),
		Year:     orUnknown(string(h.Info.Year)),
		Venue:    orUnknown(string(h.Info.Venue)),
		URL:      h.Info.EE,
		Authors:  h.Info.Authors.names(),
	}
	return e
}

// FlatKey exposes the raw DBLP record path for a hit, needed to fetch its
// BibTeX.
func (h Hit) FlatKey() string { return h.Info.Key }

// FetchRecord downloads the BibTeX export for a DBLP record path (such as
// "conf/oopsla/Smith20") and rekeys it with the derived citation key.
func FetchRecord(ctx context.Context, flatKey string) (*bibtex.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordURL+flatKey+".bib", nil)
	if err != nil {
		return nil, err
	}
	httpx.SetUA(req)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dblp: fetch %s: http %d", flatKey, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	recs, err := bibtex.Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("dblp: parse bibtex for %s: %w", flatKey, err)
	}
	want := "DBLP:" + flatKey
	for i := range recs {
		if recs[i].Key == want || len(recs) == 1 {
			recs[i].Key = schema.DblpKey(flatKey)
			return &recs[i], nil
		}
	}
	return nil, fmt.Errorf("dblp: record %s missing from bibtex export", want)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// stringish decodes JSON values that may be a string or a number.
type stringish string

func (s *stringish) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = stringish(t)
	case float64:
		*s = stringish(strings.TrimSuffix(fmt.Sprintf("%v", t), ".0"))
	case nil:
		*s = ""
	default:
		*s = stringish(fmt.Sprintf("%v", t))
	}
	return nil
}

// hitAuthors tolerates the API's single-vs-list and string-vs-object shapes.
type hitAuthors struct {
	Author []hitAuthor `json:"author"`
}

func (a *hitAuthors) UnmarshalJSON(b []byte) error {
	var wrap struct {
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(b, &wrap); err != nil {
		return err
	}
	if len(wrap.Author) == 0 {
		return nil
	}
	var list []hitAuthor
	if err := json.Unmarshal(wrap.Author, &list); err == nil {
		a.Author = list
		return nil
	}
	var one hitAuthor
	if err := json.Unmarshal(wrap.Author, &one); err != nil {
		return err
	}
	a.Author = []hitAuthor{one}
	return nil
}

func (a hitAuthors) names() []string {
	if len(a.Author) == 0 {
		return []string{"Unknown"}
	}
	out := make([]string, 0, len(a.Author))
	for _, au := range a.Author {
		if s := strings.TrimSpace(au.Text); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"Unknown"}
	}
	return out
}

type hitAuthor struct {
	Text string `json:"text"`
}

func (h *hitAuthor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		h.Text = s
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	h.Text = obj.Text
	return nil
}
