// Package traction is the client of the Traction (ACA-Py) tenant admin API.
//
// The controller authenticates once with its tenant id + API key, then calls
// the wallet and json-ld routes with the bearer token it got back. Tokens are
// cached and refreshed transparently.
package traction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
	kstrings "github.com/idtrace/traceability-controller/pkg/utils/strings"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

var (
	ErrAgent        = xe.New("agent error")
	ErrUnauthorized = xe.New("agent rejected tenant credentials")
)

type CreatedDID struct {
	Did    string `json:"did"`
	Verkey string `json:"verkey"`
}

type SignOptions struct {
	VerificationMethod string `json:"verificationMethod,omitempty"`
	ProofPurpose       string `json:"proofPurpose,omitempty"`
}

type VerifyResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type Client interface {
	// Ready checks the agent admin API answers.
	Ready(ctx context.Context) error

	// CreateDID makes the agent wallet generate a new ed25519 key pair.
	CreateDID(ctx context.Context) (CreatedDID, error)

	// GetVerkey looks a DID up in the agent wallet.
	GetVerkey(ctx context.Context, did string) (string, error)

	// SignDocument signs a json-ld document with the key identified
	// by verkey.
	SignDocument(ctx context.Context, document vc.Document, options SignOptions, verkey string) (vc.Document, error)

	// VerifyDocument checks the proof of a signed json-ld document
	// against verkey.
	VerifyDocument(ctx context.Context, document vc.Document, verkey string) (VerifyResult, error)

	// VerifyPresentation asks the agent to verify a presentation and
	// returns the raw verification result.
	VerifyPresentation(ctx context.Context, presentation vc.Document) (vc.Document, error)
}

const (
	tokenCacheKey = "tenant-token"

	// tenant tokens do not carry their expiry in the exchange response.
	// refresh well within the agent's session window.
	tokenTTL = 15 * time.Minute
)

type client struct {
	endpoint string
	tenantId string
	apiKey   string
	http     *http.Client
	tokens   *gocache.Cache
}

func New(endpoint string, tenantId string, apiKey string) Client {
	return &client{
		endpoint: kstrings.SupplySuffix(endpoint, "/"),
		tenantId: tenantId,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   gocache.New(tokenTTL, 2*tokenTTL),
	}
}

func (c *client) url(path string) string {
	return c.endpoint + kstrings.TrimPrefixAll(path, "/")
}

func (c *client) token(ctx context.Context) (string, error) {
	if cached, ok := c.tokens.Get(tokenCacheKey); ok {
		return cached.(string), nil
	}

	resp := struct {
		Token string `json:"token"`
	}{}
	err := c.call(
		ctx, http.MethodPost,
		fmt.Sprintf("multitenancy/tenant/%s/token", url.PathEscape(c.tenantId)),
		map[string]string{"api_key": c.apiKey},
		&resp,
		"", // token exchange itself is unauthenticated
	)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrUnauthorized
	}

	c.tokens.Set(tokenCacheKey, resp.Token, tokenTTL)
	return resp.Token, nil
}

// call sends a JSON request and decodes the JSON response into dest
// (skipped when dest is nil). Non-2xx responses become ErrAgent.
func (c *client) call(ctx context.Context, method string, path string, body any, dest any, token string) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return xe.Wrap(err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return xe.Wrap(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return xe.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.tokens.Delete(tokenCacheKey)
		return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
	}
	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"%w: %s %s returned %d: %s",
			ErrAgent, method, path, resp.StatusCode, string(payload),
		)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// authed wraps call with a cached tenant token.
func (c *client) authed(ctx context.Context, method string, path string, body any, dest any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	return c.call(ctx, method, path, body, dest, token)
}

func (c *client) Ready(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "status/ready", nil, nil, "")
}

func (c *client) CreateDID(ctx context.Context) (CreatedDID, error) {
	resp := struct {
		Result CreatedDID `json:"result"`
	}{}
	err := c.authed(
		ctx, http.MethodPost, "wallet/did/create",
		map[string]any{
			"method":  "key",
			"options": map[string]string{"key_type": "ed25519"},
		},
		&resp,
	)
	if err != nil {
		return CreatedDID{}, err
	}
	if resp.Result.Verkey == "" {
		return CreatedDID{}, fmt.Errorf("%w: wallet/did/create returned no verkey", ErrAgent)
	}
	return resp.Result, nil
}

func (c *client) GetVerkey(ctx context.Context, did string) (string, error) {
	resp := struct {
		Results []CreatedDID `json:"results"`
	}{}
	err := c.authed(
		ctx, http.MethodGet, "wallet/did?did="+url.QueryEscape(did), nil, &resp,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("%w: no wallet entry for %s", ErrAgent, did)
	}
	return resp.Results[0].Verkey, nil
}

func (c *client) SignDocument(ctx context.Context, document vc.Document, options SignOptions, verkey string) (vc.Document, error) {
	resp := struct {
		SignedDoc vc.Document `json:"signed_doc"`
		Error     string      `json:"error"`
	}{}
	err := c.authed(
		ctx, http.MethodPost, "jsonld/sign",
		map[string]any{
			"doc": map[string]any{
				"credential": map[string]any(document),
				"options":    options,
			},
			"verkey": verkey,
		},
		&resp,
	)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: jsonld/sign: %s", ErrAgent, resp.Error)
	}
	if resp.SignedDoc == nil {
		return nil, fmt.Errorf("%w: jsonld/sign returned no document", ErrAgent)
	}
	return resp.SignedDoc, nil
}

func (c *client) VerifyDocument(ctx context.Context, document vc.Document, verkey string) (VerifyResult, error) {
	resp := VerifyResult{}
	err := c.authed(
		ctx, http.MethodPost, "jsonld/verify",
		map[string]any{
			"doc":    map[string]any(document),
			"verkey": verkey,
		},
		&resp,
	)
	if err != nil {
		return VerifyResult{}, err
	}
	return resp, nil
}

func (c *client) VerifyPresentation(ctx context.Context, presentation vc.Document) (vc.Document, error) {
	resp := vc.Document{}
	err := c.authed(
		ctx, http.MethodPost, "vc/presentations/verify",
		map[string]any{"verifiablePresentation": map[string]any(presentation)},
		&resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
