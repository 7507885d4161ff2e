package statuslist_test

import (
	"errors"
	"testing"
	"time"

	"github.com/idtrace/traceability-controller/pkg/utils/cmp"
	sl "github.com/idtrace/traceability-controller/pkg/vc/statuslist"
)

func TestParseListType(t *testing.T) {
	for name, testcase := range map[string]struct {
		input string
		want  sl.ListType
	}{
		"list type name StatusList2021":      {"StatusList2021", sl.StatusList2021},
		"entry type StatusList2021Entry":     {"StatusList2021Entry", sl.StatusList2021},
		"list type name RevocationList2020":  {"RevocationList2020", sl.RevocationList2020},
		"entry type RevocationList2020Status": {"RevocationList2020Status", sl.RevocationList2020},
	} {
		t.Run("it parses "+name, func(t *testing.T) {
			got, err := sl.ParseListType(testcase.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != testcase.want {
				t.Errorf("unmatch: %s, expected: %s", got, testcase.want)
			}
		})
	}

	t.Run("unknown types are rejected", func(t *testing.T) {
		if _, err := sl.ParseListType("BitstringStatusList"); !errors.Is(err, sl.ErrUnknownListType) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestListType_Entry(t *testing.T) {
	listURL := "https://example.org/organization/acme/credentials/status/StatusList2021"

	t.Run("StatusList2021 entry", func(t *testing.T) {
		entry := sl.StatusList2021.Entry(listURL, 42)

		if entry.ID != listURL+"#42" {
			t.Errorf("unexpected id: %s", entry.ID)
		}
		if entry.Type != "StatusList2021Entry" {
			t.Errorf("unexpected type: %s", entry.Type)
		}
		if entry.StatusPurpose != "revocation" {
			t.Errorf("unexpected purpose: %s", entry.StatusPurpose)
		}
		if entry.StatusListIndex != "42" {
			t.Errorf("unexpected index: %s", entry.StatusListIndex)
		}
		if entry.StatusListCredential != listURL {
			t.Errorf("unexpected list credential: %s", entry.StatusListCredential)
		}
		if entry.RevocationListIndex != "" || entry.RevocationListCredential != "" {
			t.Error("revocation list fields should stay empty")
		}
	})

	t.Run("RevocationList2020 entry", func(t *testing.T) {
		entry := sl.RevocationList2020.Entry(listURL, 7)

		if entry.Type != "RevocationList2020Status" {
			t.Errorf("unexpected type: %s", entry.Type)
		}
		if entry.RevocationListIndex != "7" {
			t.Errorf("unexpected index: %s", entry.RevocationListIndex)
		}
		if entry.RevocationListCredential != listURL {
			t.Errorf("unexpected list credential: %s", entry.RevocationListCredential)
		}
		if entry.StatusListIndex != "" {
			t.Error("status list index should stay empty")
		}
	})
}

func TestListType_NewCredential(t *testing.T) {
	issuer := "did:web:example.org:organization:acme"
	listURL := "https://example.org/organization/acme/credentials/status/StatusList2021"
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("StatusList2021 credential", func(t *testing.T) {
		credential := sl.StatusList2021.NewCredential(issuer, listURL, "encoded-bits", now)

		if credential.ID() != listURL {
			t.Errorf("unexpected id: %s", credential.ID())
		}
		if credential.IssuerID() != issuer {
			t.Errorf("unexpected issuer: %s", credential.IssuerID())
		}

		wantContext := []any{
			"https://www.w3.org/2018/credentials/v1",
			"https://w3id.org/vc/status-list/2021/v1",
		}
		if got := credential.Context(); !cmp.SliceEq(got, wantContext) {
			t.Errorf("unmatch context: %v, expected: %v", got, wantContext)
		}

		types, ok := credential["type"].([]any)
		if !ok || !cmp.SliceEq(types, []any{"VerifiableCredential", "StatusList2021Credential"}) {
			t.Errorf("unexpected type: %v", credential["type"])
		}

		subject, ok := credential["credentialSubject"].(map[string]any)
		if !ok {
			t.Fatal("credentialSubject should be an object")
		}
		if subject["encodedList"] != "encoded-bits" {
			t.Errorf("unexpected encodedList: %v", subject["encodedList"])
		}
		if subject["statusPurpose"] != "revocation" {
			t.Errorf("unexpected statusPurpose: %v", subject["statusPurpose"])
		}
		if credential["issuanceDate"] != "2026-08-01T12:00:00Z" {
			t.Errorf("unexpected issuanceDate: %v", credential["issuanceDate"])
		}
	})

	t.Run("RevocationList2020 credential carries no statusPurpose", func(t *testing.T) {
		credential := sl.RevocationList2020.NewCredential(issuer, listURL, "encoded-bits", now)

		subject := credential["credentialSubject"].(map[string]any)
		if _, ok := subject["statusPurpose"]; ok {
			t.Error("statusPurpose should not be set")
		}
		if subject["type"] != "RevocationList2020" {
			t.Errorf("unexpected subject type: %v", subject["type"])
		}
	})
}
