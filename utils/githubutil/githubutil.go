package githubutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"
)

type Options struct {
	Token               string `cfg:"token"`
	AppPrivateKey       string `cfg:"app_private_key" validate:"omitempty,required_without=Token"`
	AppPrivateKeyPath   string `cfg:"app_private_key_path" validate:"omitempty,file,required_without=Token"`
	AppID               int64  `cfg:"app_id" validate:"omitempty,required_with=AppPrivateKey"`
	AppInstallationID   int64  `cfg:"app_installation_id"`
	EnterpriseURL       string `cfg:"enterprise_url" validate:"omitempty,url"`
	EnterpriseUploadURL string `cfg:"enterprise_upload_url" validate:"omitempty,url,required_with=EnterpriseURL"`
}

// NewClient returns a client for reading owner/repo.
//
// With an app ID the client authenticates as the app installation
// on the repository, looking it up unless AppInstallationID is set.
// Otherwise the token is used, if any.
func NewClient(opts *Options, owner string, repo string) (*github.Client, error) {
	if opts.AppID == 0 {
		var httpClient *http.Client
		if opts.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		}
		return opts.newClient(httpClient)
	}

	appTransport, err := opts.appsTransport()
	if err != nil {
		return nil, err
	}

	installID := opts.AppInstallationID
	if installID == 0 {
		appClient, err := opts.newClient(&http.Client{Transport: appTransport})
		if err != nil {
			return nil, err
		}
		install, _, err := appClient.Apps.FindRepositoryInstallation(context.Background(), owner, repo)
		if err != nil {
			return nil, fmt.Errorf("error getting install ID: %w", err)
		}
		if install.ID == nil {
			return nil, errors.New("installation ID is nil")
		}
		installID = *install.ID
	}

	return opts.newClient(&http.Client{Transport: ghinstallation.NewFromAppsTransport(appTransport, installID)})
}

func (o *Options) appsTransport() (*ghinstallation.AppsTransport, error) {
	var t *ghinstallation.AppsTransport
	var err error
	if o.AppPrivateKey != "" {
		t, err = ghinstallation.NewAppsTransport(http.DefaultTransport, o.AppID, []byte(o.AppPrivateKey))
	} else {
		t, err = ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, o.AppID, o.AppPrivateKeyPath)
	}
	if err != nil {
		return nil, err
	}

	if o.EnterpriseURL != "" {
		c, err := o.newClient(nil)
		if err != nil {
			return nil, err
		}
		t.BaseURL = strings.TrimSuffix(c.BaseURL.String(), "/")
	}
	return t, nil
}

func (o *Options) newClient(httpClient *http.Client) (*github.Client, error) {
	if o.EnterpriseURL != "" {
		return github.NewEnterpriseClient(o.EnterpriseURL, o.EnterpriseUploadURL, httpClient)
	}
	return github.NewClient(httpClient), nil
}
