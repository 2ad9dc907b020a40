package net

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ErrNotFound is returned for HTTP 404 responses so callers can
// treat missing content as an empty value rather than a failure.
var ErrNotFound = errors.New("URL not found")

func getResp(ctx context.Context, url, token string) (*http.Response, error) {
	c, err := GetHTTPClient()
	if err != nil {
		return nil, errors.Wrap(err, "error creating HTTP client")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating HTTP Get request")
	}

	req.Header.Set("User-Agent", clientAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.Do(req)
}

// GetJSON retrieves the HTTP content and decodes it into the passed target.
func GetJSON[T any](ctx context.Context, url, token string, target *T) error {
	resp, err := getResp(ctx, url, token)
	if err != nil {
		return errors.Wrapf(err, "error getting %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("error getting %s (status: %d - %s)", url, resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return errors.Wrap(err, "error decoding content")
	}
	return nil
}

// GetText retrieves the HTTP content as plain text. A 404 response
// yields an empty string without error.
func GetText(ctx context.Context, url, token string) (string, error) {
	resp, err := getResp(ctx, url, token)
	if err != nil {
		return "", errors.Wrapf(err, "error getting %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("error getting %s (status: %d - %s)", url, resp.StatusCode, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "error reading content")
	}
	return string(b), nil
}
