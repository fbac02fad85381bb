package giteautil

import (
	"code.gitea.io/sdk/gitea"
)

type ClientOptions struct {
	URL string `cfg:"url" validate:"required,url"`
	// Basic Auth
	Username string `cfg:"username"`
	Password string `cfg:"password" validate:"required_with=Username"`
	// Token Auth. Without a token or username, requests are anonymous.
	Token string `cfg:"token"`
}

func NewClient(opts ClientOptions) (*gitea.Client, error) {
	copts := []gitea.ClientOption{}
	if opts.Token != "" {
		copts = append(copts, gitea.SetToken(opts.Token))
	} else if opts.Username != "" && opts.Password != "" {
		copts = append(copts, gitea.SetBasicAuth(opts.Username, opts.Password))
	}
	return gitea.NewClient(opts.URL, copts...)
}
