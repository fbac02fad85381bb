package source

import (
	"context"

	"github.com/devon-mar/linkpager/linkhdr"
	"github.com/devon-mar/linkpager/utils/githubutil"
	"github.com/google/go-github/v45/github"
)

const (
	typeGitHubReleases = "github_releases"
	typeGitHubTags     = "github_tags"
)

// GitHubRepo holds the config shared by the GitHub sources.
type GitHubRepo struct {
	githubutil.Options `cfg:",squash"`
	Owner              string `cfg:"owner" validate:"required"`
	Repo               string `cfg:"repo" validate:"required"`
	PageSize           int    `cfg:"page_size" validate:"omitempty,gte=0"`
	MaxPages           int    `cfg:"max_pages" validate:"gte=0"`

	LinkConfig `cfg:",squash"`

	client *github.Client
}

func (g *GitHubRepo) init() error {
	if g.PageSize == 0 {
		// 100 is the max.
		g.PageSize = 100
	}

	var err error
	g.client, err = githubutil.NewClient(&g.Options, g.Owner, g.Repo)
	return err
}

// pages calls list for every page, following the next link
// of each response.
func (g *GitHubRepo) pages(list func(*github.ListOptions) ([]*Item, *github.Response, error), done chan struct{}) (chan *Page, chan error) {
	pageChan := make(chan *Page)
	errChan := make(chan error)

	go func() {
		defer close(errChan)
		defer close(pageChan)

		listOpts := &github.ListOptions{
			PerPage: g.PageSize,
		}
		for n := 0; g.MaxPages == 0 || n < g.MaxPages; n++ {
			items, resp, err := list(listOpts)
			if err == nil {
				err = g.send(items, resp, pageChan, done)
			}
			if err == errDone {
				return
			}

			var nextPage int
			if err == nil {
				// Response.NextPage is ignored in favour of our own parser.
				nextPage, err = linkhdr.NextPage(resp.Header)
			}
			if err != nil {
				select {
				case errChan <- err:
				case <-done:
				}
				return
			}

			if nextPage == 0 {
				return
			}
			listOpts.Page = nextPage
		}
	}()
	return pageChan, errChan
}

func (g *GitHubRepo) send(items []*Item, resp *github.Response, pageChan chan *Page, done chan struct{}) error {
	links, err := g.entries(resp.Header)
	if err != nil {
		return err
	}

	page := &Page{
		URL:   resp.Request.URL.String(),
		Links: links,
		Items: items,
	}

	select {
	case pageChan <- page:
		return nil
	case <-done:
		return errDone
	}
}

type GitHubTags struct {
	GitHubRepo `cfg:",squash"`
}

// Pages implements Source
func (g *GitHubTags) Pages(done chan struct{}) (chan *Page, chan error) {
	return g.pages(func(opts *github.ListOptions) ([]*Item, *github.Response, error) {
		tags, resp, err := g.client.Repositories.ListTags(context.Background(), g.Owner, g.Repo, opts)
		if err != nil {
			return nil, resp, err
		}
		items := make([]*Item, 0, len(tags))
		for _, t := range tags {
			var url string
			if t.Commit != nil && t.Commit.HTMLURL != nil {
				url = *t.Commit.HTMLURL
			}
			items = append(items, &Item{Name: t.GetName(), URL: url})
		}
		return items, resp, nil
	}, done)
}

// GitHubReleases lists releases by tag name. Drafts are skipped.
type GitHubReleases struct {
	GitHubRepo `cfg:",squash"`
}

// Pages implements Source
func (g *GitHubReleases) Pages(done chan struct{}) (chan *Page, chan error) {
	return g.pages(func(opts *github.ListOptions) ([]*Item, *github.Response, error) {
		releases, resp, err := g.client.Repositories.ListReleases(context.Background(), g.Owner, g.Repo, opts)
		if err != nil {
			return nil, resp, err
		}
		items := make([]*Item, 0, len(releases))
		for _, r := range releases {
			if r.GetDraft() {
				continue
			}
			items = append(items, &Item{Name: r.GetTagName(), URL: r.GetHTMLURL()})
		}
		return items, resp, nil
	}, done)
}
