package index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/corpora-dev/corpora/internal/resilience"
	"github.com/corpora-dev/corpora/pkg/version"
)

// Fetcher retrieves the package index and package archives from the
// distribution server.
type Fetcher interface {
	// FetchIndex downloads and parses the package index.
	FetchIndex(ctx context.Context) (*Index, error)

	// OpenArchive starts downloading a package archive. It returns the
	// body and the total size in bytes (-1 when the server does not say).
	// The caller closes the body.
	OpenArchive(ctx context.Context, pkg *Package) (io.ReadCloser, int64, error)
}

// fetcher is the concrete implementation of Fetcher.
type fetcher struct {
	indexURL string
	client   *http.Client
	policy   resilience.RetryPolicy
}

// NewFetcher creates a Fetcher for the index at indexURL. A nil client
// gets a 30-second timeout default; transient failures are retried per
// the policy.
func NewFetcher(indexURL string, client *http.Client, policy resilience.RetryPolicy) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &fetcher{
		indexURL: indexURL,
		client:   client,
		policy:   policy,
	}
}

// NewHTTPClient builds an HTTP client that routes through the given
// proxy URL, or through the standard environment proxies when the URL
// is empty.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	proxy := http.ProxyFromEnvironment
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("index: parse proxy url: %w", err)
		}
		proxy = http.ProxyURL(u)
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &http.Transport{Proxy: proxy},
	}, nil
}

// FetchIndex downloads and parses the package index, retrying transient
// failures.
func (f *fetcher) FetchIndex(ctx context.Context) (*Index, error) {
	var ix *Index
	err := resilience.Retry(ctx, f.policy, func() error {
		body, _, err := f.get(ctx, f.indexURL)
		if err != nil {
			return err
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("index: read %s: %w", f.indexURL, err)
		}
		ix, err = Parse(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// OpenArchive starts downloading the package's archive. Retrying a
// partially read body is the caller's business; only the initial
// request is retried here.
func (f *fetcher) OpenArchive(ctx context.Context, pkg *Package) (io.ReadCloser, int64, error) {
	u, err := f.archiveURL(pkg)
	if err != nil {
		return nil, 0, err
	}

	var body io.ReadCloser
	size := int64(-1)
	err = resilience.Retry(ctx, f.policy, func() error {
		b, n, err := f.get(ctx, u)
		if err != nil {
			return err
		}
		body, size = b, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return body, size, nil
}

// archiveURL resolves a package's download location against the index
// URL, so indexes can list relative archive paths.
func (f *fetcher) archiveURL(pkg *Package) (string, error) {
	ref := pkg.URL
	if ref == "" {
		ref = pkg.ArchiveName()
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("index: package %q url: %w", pkg.ID, err)
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(f.indexURL)
	if err != nil {
		return "", fmt.Errorf("index: parse index url: %w", err)
	}
	return base.ResolveReference(refURL).String(), nil
}

func (f *fetcher) get(ctx context.Context, u string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("index: create request: %w", err)
	}
	req.Header.Set("User-Agent", "corpora/"+version.GetVersion())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("index: request %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, &resilience.StatusError{Code: resp.StatusCode, URL: u}
	}
	return resp.Body, resp.ContentLength, nil
}
