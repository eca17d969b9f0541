package changelogbump

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCheckTimeout bounds the whole latest-version lookup.
const DefaultCheckTimeout = 10 * time.Second

// DefaultPyPIURL is the base URL of the PyPI JSON API.
const DefaultPyPIURL = "https://pypi.org"

// ErrNoRelease is returned by a source that has no published release.
var ErrNoRelease = errors.New("no published release found")

// LatestSource reports the latest published version from one place.
type LatestSource interface {
	Name() string
	Latest(ctx context.Context) (Version, error)
}

// GitTagSource reads the highest release tag of a local repository.
type GitTagSource struct {
	Dir    string
	Prefix string
}

func (s GitTagSource) Name() string { return "git" }

func (s GitTagSource) Latest(ctx context.Context) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	v, ok, err := LatestTag(s.Dir, s.Prefix)
	if err != nil {
		return Version{}, err
	}
	if !ok {
		return Version{}, ErrNoRelease
	}
	return v, nil
}

// PyPISource reads info.version from the PyPI JSON API.
type PyPISource struct {
	Package string
	// BaseURL defaults to DefaultPyPIURL.
	BaseURL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

func (s PyPISource) Name() string { return "pypi" }

type pypiResponse struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
}

func (s PyPISource) Latest(ctx context.Context) (Version, error) {
	if strings.TrimSpace(s.Package) == "" {
		return Version{}, fmt.Errorf("%w: pypi lookup needs a package name", ErrInvalidArgument)
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultPyPIURL
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := strings.TrimRight(base, "/") + "/pypi/" + url.PathEscape(s.Package) + "/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Version{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Version{}, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Version{}, fmt.Errorf("pypi package %s: %w", s.Package, ErrNoRelease)
	case resp.StatusCode != http.StatusOK:
		return Version{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Version{}, fmt.Errorf("reading response: %w", err)
	}
	var payload pypiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Version{}, fmt.Errorf("decoding pypi response: %w", err)
	}
	return Parse(payload.Info.Version)
}

// LatestResult is the outcome of one source lookup.
type LatestResult struct {
	Source string
	Latest Version
	// Compare is current.Compare(Latest): negative means the current version
	// is behind the published one.
	Compare int
	Err     error
}

// CheckLatest queries every source concurrently and compares each published
// version with current. Failures are reported per source; the returned
// error is only set when ctx ends before the lookups finish.
func CheckLatest(ctx context.Context, current Version, sources ...LatestSource) ([]LatestResult, error) {
	results := make([]LatestResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res := LatestResult{Source: src.Name()}
			v, err := src.Latest(gctx)
			if err != nil {
				res.Err = err
				logDebug("latest lookup via %s failed: %v", src.Name(), err)
			} else {
				res.Latest = v
				res.Compare = current.Compare(v)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
