package source

import (
	"code.gitea.io/sdk/gitea"
	"github.com/devon-mar/linkpager/linkhdr"
	"github.com/devon-mar/linkpager/utils/giteautil"
)

const (
	typeGiteaReleases = "gitea_releases"
	typeGiteaTags     = "gitea_tags"

	// The default page size
	// https://docs.gitea.io/en-us/config-cheat-sheet/
	giteaDefaultPageSize = 30
)

// GiteaRepo holds the config shared by the Gitea sources.
type GiteaRepo struct {
	giteautil.ClientOptions `cfg:",squash"`
	Owner                   string `cfg:"owner" validate:"required"`
	Repo                    string `cfg:"repo" validate:"required"`
	PageSize                int    `cfg:"page_size" validate:"omitempty,gte=0"`
	MaxPages                int    `cfg:"max_pages" validate:"gte=0"`

	LinkConfig `cfg:",squash"`

	client *gitea.Client
}

func (g *GiteaRepo) init() error {
	if g.PageSize == 0 {
		g.PageSize = giteaDefaultPageSize
	}

	var err error
	g.client, err = giteautil.NewClient(g.ClientOptions)
	return err
}

// pages calls list with each page number, starting at 1,
// until a response has no next link.
func (g *GiteaRepo) pages(list func(gitea.ListOptions) ([]*Item, *gitea.Response, error), done chan struct{}) (chan *Page, chan error) {
	pageChan := make(chan *Page)
	errChan := make(chan error)

	go func() {
		defer close(errChan)
		defer close(pageChan)

		sendErr := func(err error) {
			select {
			case errChan <- err:
			case <-done:
			}
		}

		opts := gitea.ListOptions{PageSize: g.PageSize}
		for n := 0; g.MaxPages == 0 || n < g.MaxPages; n++ {
			items, resp, err := list(opts)
			if err != nil {
				sendErr(err)
				return
			}

			links, err := g.entries(resp.Header)
			if err != nil {
				sendErr(err)
				return
			}
			page := &Page{
				URL:   resp.Request.URL.String(),
				Links: links,
				Items: items,
			}

			select {
			case pageChan <- page:
			case <-done:
				return
			}

			nextPage, err := linkhdr.NextPage(resp.Header)
			if err != nil {
				sendErr(err)
				return
			}
			if nextPage == 0 {
				return
			}
			opts.Page = nextPage
		}
	}()

	return pageChan, errChan
}

type GiteaTags struct {
	GiteaRepo `cfg:",squash"`
}

// Pages implements Source
func (g *GiteaTags) Pages(done chan struct{}) (chan *Page, chan error) {
	return g.pages(func(opts gitea.ListOptions) ([]*Item, *gitea.Response, error) {
		tags, resp, err := g.client.ListRepoTags(g.Owner, g.Repo, gitea.ListRepoTagsOptions{ListOptions: opts})
		if err != nil {
			return nil, resp, err
		}
		items := make([]*Item, 0, len(tags))
		for _, t := range tags {
			items = append(items, itemFromGiteaTag(t))
		}
		return items, resp, nil
	}, done)
}

func itemFromGiteaTag(t *gitea.Tag) *Item {
	var url string
	if t.Commit != nil {
		url = t.Commit.URL
	}
	return &Item{
		Name: t.Name,
		URL:  url,
	}
}

// GiteaReleases lists releases by tag name. Drafts are skipped.
type GiteaReleases struct {
	GiteaRepo `cfg:",squash"`
}

// Pages implements Source
func (g *GiteaReleases) Pages(done chan struct{}) (chan *Page, chan error) {
	return g.pages(func(opts gitea.ListOptions) ([]*Item, *gitea.Response, error) {
		releases, resp, err := g.client.ListReleases(g.Owner, g.Repo, gitea.ListReleasesOptions{ListOptions: opts})
		if err != nil {
			return nil, resp, err
		}
		items := make([]*Item, 0, len(releases))
		for _, r := range releases {
			if r.IsDraft {
				continue
			}
			items = append(items, &Item{Name: r.TagName, URL: r.HTMLURL})
		}
		return items, resp, nil
	}, done)
}
