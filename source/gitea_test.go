package source

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/devon-mar/linkpager/linkhdr"
)

func newTestGitea() *httptest.Server {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		switch r.URL.Path {
		case "/api/v1/version":
			_, _ = w.Write([]byte(`{"version": "1.20.0"}`))
			return
		case "/api/v1/repos/devon-mar/linkpager/tags":
		case "/api/v1/repos/devon-mar/linkpager/releases":
			releasesURL := ts.URL + r.URL.Path
			switch r.URL.Query().Get("page") {
			case "", "1":
				w.Header().Set("Link", fmt.Sprintf(`<%s?limit=2&page=2>; rel="next"`, releasesURL))
				_, _ = w.Write([]byte(`[
  {"tag_name": "v1.2.0-rc1", "draft": true},
  {"tag_name": "v1.1.0", "html_url": "https://gitea.example.com/devon-mar/linkpager/releases/tag/v1.1.0"}
]`))
			default:
				_, _ = w.Write([]byte(`[{"tag_name": "v1.0.0"}]`))
			}
			return
		default:
			http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
			return
		}

		tagsURL := ts.URL + r.URL.Path
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s?limit=2&page=2>; rel="next",<%s?limit=2&page=2>; rel="last"`, tagsURL, tagsURL))
			_, _ = w.Write([]byte(`[
  {"name": "v1.1.0", "commit": {"sha": "b", "url": "https://gitea.example.com/api/v1/repos/devon-mar/linkpager/git/commits/b"}},
  {"name": "v1.0.0"}
]`))
		case "2":
			w.Header().Set("Link", fmt.Sprintf(`<%s?limit=2&page=1>; rel="first",<%s?limit=2&page=1>; rel="prev"`, tagsURL, tagsURL))
			_, _ = w.Write([]byte(`[{"name": "v0.1.0"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	return ts
}

func TestGiteaTagsPages(t *testing.T) {
	ts := newTestGitea()
	defer ts.Close()

	tests := map[string]struct {
		repo      string
		maxPages  int
		want      []*Item
		wantError bool
	}{
		"all": {
			repo: "linkpager",
			want: []*Item{
				{Name: "v1.1.0", URL: "https://gitea.example.com/api/v1/repos/devon-mar/linkpager/git/commits/b"},
				{Name: "v1.0.0"},
				{Name: "v0.1.0"},
			},
		},
		"max pages": {
			repo:     "linkpager",
			maxPages: 1,
			want: []*Item{
				{Name: "v1.1.0", URL: "https://gitea.example.com/api/v1/repos/devon-mar/linkpager/git/commits/b"},
				{Name: "v1.0.0"},
			},
		},
		"not found": {
			repo:      "missing",
			want:      []*Item{},
			wantError: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := NewSource("test", typeGiteaTags, map[string]interface{}{
				"url":       ts.URL,
				"owner":     "devon-mar",
				"repo":      tc.repo,
				"page_size": 2,
				"max_pages": tc.maxPages,
			})
			if err != nil {
				t.Fatalf("error initializing source: %v", err)
			}

			pageChan, errChan := s.Pages(nil)
			pages, err := collect(t, pageChan, errChan)

			have := []*Item{}
			for _, p := range pages {
				have = append(have, p.Items...)
			}
			if !reflect.DeepEqual(have, tc.want) {
				t.Errorf("got %#v, want %#v", have, tc.want)
			}

			if err == nil && tc.wantError {
				t.Errorf("expected an error")
			} else if err != nil && !tc.wantError {
				t.Errorf("expected no error but got: %v", err)
			}

			if len(pages) > 1 {
				if _, ok := pages[1].Links.Get(linkhdr.RelNext); ok {
					t.Errorf("expected no next link on the last page")
				}
				if rec, ok := pages[1].Links.Get(linkhdr.RelFirst); !ok || rec.(linkhdr.Record)["page"] != "1" {
					t.Errorf("got first link %#v, want page 1", rec)
				}
			}

			assertClosed(t, pageChan, errChan)
		})
	}
}

func TestGiteaReleasesPages(t *testing.T) {
	ts := newTestGitea()
	defer ts.Close()

	s, err := NewSource("test", typeGiteaReleases, map[string]interface{}{
		"url":       ts.URL,
		"owner":     "devon-mar",
		"repo":      "linkpager",
		"page_size": 2,
	})
	if err != nil {
		t.Fatalf("error initializing source: %v", err)
	}

	pageChan, errChan := s.Pages(nil)
	pages, err := collect(t, pageChan, errChan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []*Item{
		{Name: "v1.1.0", URL: "https://gitea.example.com/devon-mar/linkpager/releases/tag/v1.1.0"},
		{Name: "v1.0.0"},
	}
	have := []*Item{}
	for _, p := range pages {
		have = append(have, p.Items...)
	}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("got %#v, want %#v", have, want)
	}
	if len(pages) != 2 {
		t.Errorf("got %d pages, want 2", len(pages))
	}

	assertClosed(t, pageChan, errChan)
}
