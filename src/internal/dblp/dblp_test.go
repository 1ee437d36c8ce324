package dblp

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"bibrarian/src/internal/schema"
)

type fakeHTTP struct {
	status  int
	body    string
	lastURL string
}

func (f *fakeHTTP) Do(req *http.Request) (*http.Response, error) {
	f.lastURL = req.URL.String()
	return &http.Response{StatusCode: f.status, Body: io.NopCloser(strings.NewReader(f.body)), Header: make(http.Header)}, nil
}

const searchBody = `{
  "result": {
    "hits": {
      "hit": [
        {
          "info": {
            "key": "conf/oopsla/Smith20",
            "title": "A {Great} Paper",
            "year": "2020",
            "venue": "OOPSLA",
            "ee": "https://example.org/paper",
            "authors": {"author": [{"text": "Jane Doe"}, {"text": "John Smith"}]}
          }
        },
        {
          "info": {
            "key": "journals/tods/Codd70",
            "title": "A Relational Model",
            "year": 1970,
            "venue": "TODS",
            "authors": {"author": {"text": "E. F. Codd"}}
          }
        }
      ]
    }
  }
}`

func TestSearch(t *testing.T) {
	f := &fakeHTTP{status: 200, body: searchBody}
	old := client
	SetHTTPClient(f)
	defer SetHTTPClient(old)

	entries, err := Search(context.Background(), "relational model")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(entries))
	}
	if !strings.Contains(f.lastURL, "q=relational+model") || !strings.Contains(f.lastURL, "format=json") {
		t.Fatalf("query url: %q", f.lastURL)
	}

	e := entries[0]
	if e.Key != "Smith20:FE34" {
		t.Fatalf("derived key: %q", e.Key)
	}
	if e.Source != Source || e.RemoteID != "conf/oopsla/Smith20" {
		t.Fatalf("source/remote id: %+v", e)
	}
	if e.Title != "A Great Paper" {
		t.Fatalf("title stripped: %q", e.Title)
	}
	if len(e.Authors) != 2 || e.Authors[0] != "Jane Doe" {
		t.Fatalf("author list: %v", e.Authors)
	}
	if e.Record != nil {
		t.Fatalf("record must stay nil until fetched")
	}

	// Second hit exercises the irregular JSON shapes: numeric year and a
	// single author object instead of a list.
	e2 := entries[1]
	if e2.Year != "1970" || e2.Venue != "TODS" {
		t.Fatalf("stringish fields: %+v", e2)
	}
	if len(e2.Authors) != 1 || e2.Authors[0] != "E. F. Codd" {
		t.Fatalf("single author: %v", e2.Authors)
	}
}

func TestSearchBlankQuery(t *testing.T) {
	f := &fakeHTTP{status: 500, body: "must not be called"}
	old := client
	SetHTTPClient(f)
	defer SetHTTPClient(old)
	entries, err := Search(context.Background(), "   ")
	if err != nil || entries != nil {
		t.Fatalf("blank query: %v %v", entries, err)
	}
	if f.lastURL != "" {
		t.Fatalf("blank query must not hit the network")
	}
}

func TestSearchHTTPError(t *testing.T) {
	old := client
	SetHTTPClient(&fakeHTTP{status: 503, body: "overloaded"})
	defer SetHTTPClient(old)
	if _, err := Search(context.Background(), "paxos"); err == nil {
		t.Fatalf("expected error on http failure")
	}
}

func TestFetchRecord(t *testing.T) {
	bib := `@inproceedings{DBLP:conf/oopsla/Smith20,
  author = {Jane Doe and John Smith},
  title = {A Great Paper},
  booktitle = {OOPSLA},
  year = {2020},
}`
	f := &fakeHTTP{status: 200, body: bib}
	old := client
	SetHTTPClient(f)
	defer SetHTTPClient(old)

	rec, err := FetchRecord(context.Background(), "conf/oopsla/Smith20")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasSuffix(f.lastURL, "/rec/bib2/conf/oopsla/Smith20.bib") {
		t.Fatalf("record url: %q", f.lastURL)
	}
	if rec.Key != schema.DblpKey("conf/oopsla/Smith20") {
		t.Fatalf("record must be rekeyed: %q", rec.Key)
	}
	if rec.Get("booktitle") != "OOPSLA" {
		t.Fatalf("fields: %+v", rec)
	}
}

func TestFetchRecordMissing(t *testing.T) {
	old := client
	SetHTTPClient(&fakeHTTP{status: 200, body: `@misc{other1, title={X}}
@misc{other2, title={Y}}`})
	defer SetHTTPClient(old)
	if _, err := FetchRecord(context.Background(), "conf/x/Y1"); err == nil {
		t.Fatalf("expected error when the wanted record is absent")
	}
}

func TestFetchRecordHTTPError(t *testing.T) {
	old := client
	SetHTTPClient(&fakeHTTP{status: 404, body: "not found"})
	defer SetHTTPClient(old)
	if _, err := FetchRecord(context.Background(), "conf/x/Y1"); err == nil {
		t.Fatalf("expected error on http failure")
	}
}
