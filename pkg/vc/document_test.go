package vc_test

import (
	"testing"
	"time"

	"github.com/idtrace/traceability-controller/pkg/vc"
)

func TestDocument_IssuerID(t *testing.T) {
	t.Run("when issuer is a string, it returns it", func(t *testing.T) {
		doc := vc.Document{"issuer": "did:web:example.org:organization:acme"}
		if doc.IssuerID() != "did:web:example.org:organization:acme" {
			t.Errorf("unexpected issuer: %s", doc.IssuerID())
		}
	})

	t.Run("when issuer is an object, it returns its id", func(t *testing.T) {
		doc := vc.Document{
			"issuer": map[string]any{
				"id":   "did:web:example.org:organization:acme",
				"name": "ACME Corp.",
			},
		}
		if doc.IssuerID() != "did:web:example.org:organization:acme" {
			t.Errorf("unexpected issuer: %s", doc.IssuerID())
		}
	})

	t.Run("when issuer is missing, it returns empty string", func(t *testing.T) {
		if (vc.Document{}).IssuerID() != "" {
			t.Error("issuer should be empty")
		}
	})
}

func TestDocument_AppendContext(t *testing.T) {
	t.Run("it appends a new context", func(t *testing.T) {
		doc := vc.Document{"@context": []any{vc.ContextCredentialsV1}}
		doc.AppendContext("https://w3id.org/vc/status-list/2021/v1")

		ctx := doc.Context()
		if len(ctx) != 2 {
			t.Fatalf("unexpected context: %v", ctx)
		}
		if ctx[1] != "https://w3id.org/vc/status-list/2021/v1" {
			t.Errorf("unexpected context: %v", ctx)
		}
	})

	t.Run("it does not duplicate a known context", func(t *testing.T) {
		doc := vc.Document{"@context": []any{vc.ContextCredentialsV1}}
		doc.AppendContext(vc.ContextCredentialsV1)

		if len(doc.Context()) != 1 {
			t.Errorf("context is duplicated: %v", doc.Context())
		}
	})
}

func TestDocument_ExpirationTime(t *testing.T) {
	t.Run("when expirationDate is set, it parses it", func(t *testing.T) {
		doc := vc.Document{"expirationDate": "2030-01-02T15:04:05Z"}
		expiration, ok, err := doc.ExpirationTime()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expirationDate should be found")
		}
		want := time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)
		if !expiration.Equal(want) {
			t.Errorf("unexpected expiration: %s", expiration)
		}
	})

	t.Run("when expirationDate is missing, ok is false", func(t *testing.T) {
		_, ok, err := (vc.Document{}).ExpirationTime()
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expirationDate should not be found")
		}
	})

	t.Run("when expirationDate is broken, it errors", func(t *testing.T) {
		doc := vc.Document{"expirationDate": "next tuesday"}
		_, ok, err := doc.ExpirationTime()
		if err == nil {
			t.Error("error should be reported")
		}
		if !ok {
			t.Error("expirationDate is there, broken or not")
		}
	})
}

func TestDocument_CredentialStatus(t *testing.T) {
	t.Run("entry roundtrips through SetCredentialStatus", func(t *testing.T) {
		doc := vc.Document{}
		entry := vc.StatusEntry{
			ID:                   "https://example.org/organization/acme/credentials/status/StatusList2021#42",
			Type:                 "StatusList2021Entry",
			StatusPurpose:        "revocation",
			StatusListIndex:      "42",
			StatusListCredential: "https://example.org/organization/acme/credentials/status/StatusList2021",
		}
		if err := doc.SetCredentialStatus(entry); err != nil {
			t.Fatal(err)
		}

		got, ok := doc.CredentialStatus()
		if !ok {
			t.Fatal("credentialStatus should be found")
		}
		if got != entry {
			t.Errorf("unmatch: %+v, expected: %+v", got, entry)
		}

		index, err := got.Index()
		if err != nil {
			t.Fatal(err)
		}
		if index != 42 {
			t.Errorf("unexpected index: %d", index)
		}
	})

	t.Run("when credentialStatus is missing, ok is false", func(t *testing.T) {
		if _, ok := (vc.Document{}).CredentialStatus(); ok {
			t.Error("credentialStatus should not be found")
		}
	})
}

func TestDocument_Clone(t *testing.T) {
	t.Run("mutating the clone leaves the original untouched", func(t *testing.T) {
		doc := vc.Document{
			"id": "urn:uuid:0",
			"credentialSubject": map[string]any{
				"id": "did:example:subject",
			},
		}
		clone := doc.Clone()
		clone["id"] = "urn:uuid:1"
		clone["credentialSubject"].(map[string]any)["id"] = "did:example:other"

		if doc.ID() != "urn:uuid:0" {
			t.Errorf("original id changed: %s", doc.ID())
		}
		if doc["credentialSubject"].(map[string]any)["id"] != "did:example:subject" {
			t.Error("original subject changed")
		}
	})
}
