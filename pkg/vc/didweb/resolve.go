// Package didweb resolves did:web identifiers to the DID documents their
// controllers publish over HTTPS.
package didweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

var ErrResolve = xe.New("did:web resolution failed")

type Resolver struct {
	http *http.Client

	// scheme is https. Tests point it at plain-http test servers.
	scheme string
}

func NewResolver() *Resolver {
	return &Resolver{
		http:   &http.Client{Timeout: 10 * time.Second},
		scheme: "https",
	}
}

// DocumentURL maps a did:web identifier to the URL its DID document is
// served from: the method-specific id is a host optionally followed by
// colon-separated path segments, percent-encoded. A bare host resolves
// under /.well-known/ .
//
//	did:web:example.org                   -> https://example.org/.well-known/did.json
//	did:web:example.org:organization:acme -> https://example.org/organization/acme/did.json
func DocumentURL(did string) (string, error) {
	return documentURL("https", did)
}

func documentURL(scheme string, did string) (string, error) {
	parts := strings.Split(did, ":")
	if len(parts) < 3 || parts[0] != "did" || parts[1] != "web" || parts[2] == "" {
		return "", fmt.Errorf("%w: %s is not a did:web identifier", ErrResolve, did)
	}

	segments := make([]string, 0, len(parts)-2)
	for _, part := range parts[2:] {
		segment, err := url.PathUnescape(part)
		if err != nil {
			return "", fmt.Errorf("%w: malformed identifier %s", ErrResolve, did)
		}
		segments = append(segments, segment)
	}

	if len(segments) == 1 {
		return scheme + "://" + segments[0] + "/.well-known/did.json", nil
	}
	return scheme + "://" + strings.Join(segments, "/") + "/did.json", nil
}

// Resolve fetches and decodes the DID document behind did.
func (r *Resolver) Resolve(ctx context.Context, did string) (vc.DIDDocument, error) {
	target, err := documentURL(r.scheme, did)
	if err != nil {
		return vc.DIDDocument{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return vc.DIDDocument{}, xe.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return vc.DIDDocument{}, fmt.Errorf("%w: %s: %s", ErrResolve, did, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return vc.DIDDocument{}, fmt.Errorf(
			"%w: %s returned %d", ErrResolve, target, resp.StatusCode,
		)
	}

	document := vc.DIDDocument{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&document); err != nil {
		return vc.DIDDocument{}, fmt.Errorf("%w: %s: %s", ErrResolve, target, err)
	}
	if document.ID != did {
		return vc.DIDDocument{}, fmt.Errorf(
			"%w: document at %s claims %s", ErrResolve, target, document.ID,
		)
	}
	return document, nil
}

// Verkey resolves did and returns the first ed25519 key of its document.
func (r *Resolver) Verkey(ctx context.Context, did string) (string, error) {
	document, err := r.Resolve(ctx, did)
	if err != nil {
		return "", err
	}
	for _, method := range document.VerificationMethod {
		if method.PublicKeyBase58 != "" {
			return method.PublicKeyBase58, nil
		}
	}
	return "", fmt.Errorf("%w: %s publishes no usable key", ErrResolve, did)
}
