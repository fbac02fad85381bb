package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	typeContainer = "container_registry"

	wwwAuthHeader = "www-authenticate"
	authzHeader   = "Authorization"
)

// ContainerRegistry lists the tags of a repository in a registry
// implementing the Docker registry HTTP API v2.
type ContainerRegistry struct {
	URL      string `cfg:"url" validate:"required,url"`
	Repo     string `cfg:"repo" validate:"required"`
	PageSize int    `cfg:"page_size" validate:"omitempty,gt=0"`
	Token    string `cfg:"token"`
	MaxPages int    `cfg:"max_pages" validate:"gte=0"`

	LinkConfig `cfg:",squash"`

	client *http.Client
}

func (c *ContainerRegistry) init() error {
	c.URL = strings.TrimRight(c.URL, "/")
	c.client = &http.Client{Timeout: httpTimeout}
	return nil
}

// Pages implements Source
func (c *ContainerRegistry) Pages(done chan struct{}) (chan *Page, chan error) {
	url := c.URL + "/v2/" + c.Repo + "/tags/list"
	if c.PageSize != 0 {
		url += fmt.Sprintf("?n=%d", c.PageSize)
	}

	// The token is fetched at most once per walk.
	a := &registryAuth{c: c, token: c.Token, tried: c.Token != ""}
	return walk(url, c.MaxPages, a.get, c.LinkConfig.entries, decodeTags, done)
}

type registryAuth struct {
	c     *ContainerRegistry
	token string
	tried bool
}

func (a *registryAuth) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error making new request %s: %w", url, err)
	}
	if a.token != "" {
		req.Header.Set(authzHeader, "Bearer "+a.token)
	}

	resp, err := a.c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if a.tried || resp.StatusCode != http.StatusUnauthorized || resp.Header.Get(wwwAuthHeader) == "" {
		return resp, nil
	}
	resp.Body.Close()

	a.tried = true
	a.token, err = a.c.getToken(resp.Header.Get(wwwAuthHeader))
	if err != nil {
		return nil, err
	}
	req.Header.Set(authzHeader, "Bearer "+a.token)
	resp, err = a.c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request (with Auth): %w", err)
	}
	return resp, nil
}

func decodeTags(r io.Reader) ([]*Item, error) {
	tags := struct {
		Tags []string `json:"tags"`
	}{}
	if err := json.NewDecoder(r).Decode(&tags); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}
	items := make([]*Item, 0, len(tags.Tags))
	for _, t := range tags.Tags {
		items = append(items, &Item{Name: t})
	}
	return items, nil
}

func (c *ContainerRegistry) getToken(hdr string) (string, error) {
	if !strings.HasPrefix(hdr, "Bearer ") {
		return "", fmt.Errorf("unsupported auth type: %s", hdr)
	}

	var realm string
	var service string
	var scope string

	// strip "Bearer "
	hdr = hdr[7:]
	for _, kv := range strings.Split(hdr, ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return "", fmt.Errorf("invalid KV pair %q", kv)
		}

		val = strings.Trim(val, `"`)

		switch strings.TrimSpace(key) {
		case "realm":
			realm = val
		case "service":
			service = val
		case "scope":
			scope = val
		}
	}
	if realm == "" {
		return "", errors.New("realm is empty")
	}
	if service == "" {
		return "", errors.New("service is empty")
	}
	if scope == "" {
		return "", errors.New("scope is empty")
	}
	req, err := http.NewRequest(http.MethodGet, realm, nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Add("scope", scope)
	q.Add("service", service)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending token req: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("error getting token: %w", err)
	}

	token := struct {
		Token string `json:"token"`
	}{}

	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.Token == "" {
		return "", errors.New("token was empty")
	}
	return token.Token, nil
}
