package vc

import (
	"encoding/json"
	"time"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

// Document is a JSON-LD document (credential, presentation, DID document...)
// handled structurally.
//
// Signing agents are picky about unknown fields being preserved, so documents
// stay maps end-to-end and typed views are extracted on demand.
type Document map[string]any

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{}
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := map[string]any{}
		for k, e := range val {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, e := range val {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// ID returns the "id" property, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Context returns the "@context" property as a slice.
// A bare string context is returned as a single-element slice.
func (d Document) Context() []any {
	switch ctx := d["@context"].(type) {
	case []any:
		return ctx
	case string:
		return []any{ctx}
	default:
		return nil
	}
}

// AppendContext adds uri to "@context" unless it is already there.
func (d Document) AppendContext(uri string) {
	ctx := d.Context()
	for _, c := range ctx {
		if s, ok := c.(string); ok && s == uri {
			return
		}
	}
	d["@context"] = append(ctx, uri)
}

// IssuerID returns the issuer identifier.
// The "issuer" property may be a string or an object with an "id".
func (d Document) IssuerID() string {
	switch issuer := d["issuer"].(type) {
	case string:
		return issuer
	case map[string]any:
		id, _ := issuer["id"].(string)
		return id
	default:
		return ""
	}
}

// ExpirationTime parses the "expirationDate" property.
// The second return value is false when the credential has no expiration.
func (d Document) ExpirationTime() (time.Time, bool, error) {
	raw, ok := d["expirationDate"].(string)
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, true, xe.Wrap(err)
	}
	return t, true, nil
}

// CredentialStatus returns the typed "credentialStatus" entry.
// The second return value is false when the credential carries none.
func (d Document) CredentialStatus() (StatusEntry, bool) {
	raw, ok := d["credentialStatus"].(map[string]any)
	if !ok {
		return StatusEntry{}, false
	}

	var entry StatusEntry
	buf, err := json.Marshal(raw)
	if err != nil {
		return StatusEntry{}, false
	}
	if err := json.Unmarshal(buf, &entry); err != nil {
		return StatusEntry{}, false
	}
	return entry, true
}

// SetCredentialStatus replaces the "credentialStatus" entry.
func (d Document) SetCredentialStatus(entry StatusEntry) error {
	m, err := ToDocument(entry)
	if err != nil {
		return err
	}
	d["credentialStatus"] = map[string]any(m)
	return nil
}

// ToDocument converts any marshalable value into a Document
// by a JSON round trip.
func ToDocument(v any) (Document, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	var d Document
	if err := json.Unmarshal(buf, &d); err != nil {
		return nil, xe.Wrap(err)
	}
	return d, nil
}
