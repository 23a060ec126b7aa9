package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"product-storefront/internal/storefront"
	"product-storefront/internal/storefront/credentials"
)

const (
	contentTypeJSON = "application/json"
	defaultTimeout  = 5 * time.Second
	maxErrorBody    = 64 << 10
)

var (
	// errAbsent marks a 404 from the downstream service.
	errAbsent = errors.New("resource absent")
	// errEmpty marks a 2xx response without a body where one was expected.
	errEmpty = errors.New("empty response body")
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type transport struct {
	baseURL    string
	httpClient *http.Client
}

func newTransport(cfg Config) transport {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return transport{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

type rejection struct {
	Errors []string `json:"errors"`
}

func (t transport) do(ctx context.Context, cred storefront.Credential, r request, out any) error {
	target := t.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if r.body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if err := credentials.Attach(req, cred); err != nil {
		return err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", storefront.ErrUnreachable, r.method, r.path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		return decode(resp.Body, out, r)
	case resp.StatusCode == http.StatusBadRequest:
		var payload rejection
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err != nil {
			return &storefront.RejectedError{Errors: []string{}}
		}
		return &storefront.RejectedError{Errors: payload.Errors}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s %s: %s", storefront.ErrUnauthorized, r.method, r.path, resp.Status)
	case resp.StatusCode == http.StatusNotFound:
		return errAbsent
	default:
		return fmt.Errorf("%w: %s %s: unexpected status %s", storefront.ErrUnreachable, r.method, r.path, resp.Status)
	}
}

func decode(body io.Reader, out any, r request) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", storefront.ErrUnreachable, r.method, r.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errEmpty
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", storefront.ErrUnreachable, r.method, r.path, err)
	}
	return nil
}

// readResult folds the absence markers of a read into found=false.
func readResult(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errAbsent) || errors.Is(err, errEmpty) {
		return false, nil
	}
	return false, err
}

// writeResult turns a 404 on a mutation into ErrNotFound: the target vanished
// after its existence was confirmed.
func writeResult(err error, what string) error {
	switch {
	case err == nil, errors.Is(err, errEmpty):
		return nil
	case errors.Is(err, errAbsent):
		return fmt.Errorf("%s: %w", what, storefront.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
