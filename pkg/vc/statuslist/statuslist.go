// Package statuslist implements the W3C status list credential formats
// the controller maintains per organization: StatusList2021 and the older
// RevocationList2020.
package statuslist

import (
	"fmt"
	"strconv"
	"time"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

// DefaultSize is the number of entries in a fresh status list.
// 16KB of bitstring, the minimum the StatusList2021 spec asks for.
const DefaultSize = 131072

type ListType string

const (
	StatusList2021     ListType = "StatusList2021"
	RevocationList2020 ListType = "RevocationList2020"
)

var ErrUnknownListType = xe.New("unknown status list type")

// ParseListType maps a credentialStatus entry type (or a list type name)
// to its ListType.
func ParseListType(s string) (ListType, error) {
	switch s {
	case string(StatusList2021), "StatusList2021Entry":
		return StatusList2021, nil
	case string(RevocationList2020), "RevocationList2020Status":
		return RevocationList2020, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownListType, s)
}

// Context is the JSON-LD context a credential referencing this list
// type has to carry.
func (t ListType) Context() string {
	switch t {
	case RevocationList2020:
		return "https://w3id.org/vc-revocation-list-2020/v1"
	default:
		return "https://w3id.org/vc/status-list/2021/v1"
	}
}

// EntryType is the "type" of a credentialStatus entry.
func (t ListType) EntryType() string {
	switch t {
	case RevocationList2020:
		return "RevocationList2020Status"
	default:
		return "StatusList2021Entry"
	}
}

// CredentialType is the "type" of the signed list credential.
func (t ListType) CredentialType() string {
	return string(t) + "Credential"
}

// Entry builds the credentialStatus entry for position index of the list
// published at listURL.
func (t ListType) Entry(listURL string, index int) vc.StatusEntry {
	id := fmt.Sprintf("%s#%d", listURL, index)
	switch t {
	case RevocationList2020:
		return vc.StatusEntry{
			ID:                       id,
			Type:                     t.EntryType(),
			RevocationListIndex:      strconv.Itoa(index),
			RevocationListCredential: listURL,
		}
	default:
		return vc.StatusEntry{
			ID:                   id,
			Type:                 t.EntryType(),
			StatusPurpose:        "revocation",
			StatusListIndex:      strconv.Itoa(index),
			StatusListCredential: listURL,
		}
	}
}

// NewCredential builds the unsigned status list credential for issuer,
// published at listURL, wrapping the encoded bitstring.
func (t ListType) NewCredential(issuer string, listURL string, encodedList string, now time.Time) vc.Document {
	subject := map[string]any{
		"id":          listURL + "#list",
		"type":        string(t),
		"encodedList": encodedList,
	}
	if t == StatusList2021 {
		subject["statusPurpose"] = "revocation"
	}

	return vc.Document{
		"@context":          []any{vc.ContextCredentialsV1, t.Context()},
		"id":                listURL,
		"type":              []any{"VerifiableCredential", t.CredentialType()},
		"issuer":            issuer,
		"issuanceDate":      now.UTC().Format(time.RFC3339),
		"credentialSubject": subject,
	}
}
