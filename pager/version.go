package pager

import (
	"errors"

	"github.com/Masterminds/semver/v3"
	"github.com/devon-mar/linkpager/source"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

var ErrNoVersions = errors.New("no versions found")

type Version struct {
	V    string
	SV   *semver.Version
	Item *source.Item
}

func (v Version) String() string {
	if v.SV != nil {
		return v.SV.String()
	}
	return v.V
}

// Versions returns the items of the named source that are semantic versions,
// highest first. Prereleases are skipped unless the source allows them.
func (p *Pager) Versions(name string, logger *log.Entry) ([]*Version, error) {
	items, err := p.List(name, 0, logger)
	if err != nil {
		return nil, err
	}
	cfg := p.configs[name]

	versions := make([]*Version, 0, len(items))
	for _, itm := range items {
		v := &Version{V: itm.Name, Item: itm}
		if cfg != nil {
			v.V = cfg.PreReplace.Do(v.V)
		}

		v.SV, err = semver.NewVersion(v.V)
		if err != nil {
			logger.Debugf("Skipping %q: not a semantic version", v.V)
			continue
		}
		if v.SV.Prerelease() != "" && (cfg == nil || !cfg.Prerelease) {
			logger.Debugf("Skipping version %s: is a prerelease", v.SV)
			continue
		}
		versions = append(versions, v)
	}

	slices.SortStableFunc(versions, func(a, b *Version) bool {
		return a.SV.GreaterThan(b.SV)
	})
	return versions, nil
}

// Latest returns the highest version of the named source.
func (p *Pager) Latest(name string, logger *log.Entry) (*Version, error) {
	versions, err := p.Versions(name, logger)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ErrNoVersions
	}
	return versions[0], nil
}
