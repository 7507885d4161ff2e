package vc

import (
	"strconv"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

// StatusEntry is the "credentialStatus" property of a credential.
//
// StatusList2021 and RevocationList2020 name their index/list fields
// differently, so both spellings live here and the accessors pick
// whichever is set.
type StatusEntry struct {
	ID                       string `json:"id,omitempty"`
	Type                     string `json:"type"`
	StatusPurpose            string `json:"statusPurpose,omitempty"`
	StatusListIndex          string `json:"statusListIndex,omitempty"`
	StatusListCredential     string `json:"statusListCredential,omitempty"`
	RevocationListIndex      string `json:"revocationListIndex,omitempty"`
	RevocationListCredential string `json:"revocationListCredential,omitempty"`
}

// Index returns the position of this entry in its status list.
func (e StatusEntry) Index() (int, error) {
	raw := e.StatusListIndex
	if raw == "" {
		raw = e.RevocationListIndex
	}
	if raw == "" {
		return 0, xe.New("status entry has no index")
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	return index, nil
}

// ListCredential returns the URL of the status list credential.
func (e StatusEntry) ListCredential() string {
	if e.StatusListCredential != "" {
		return e.StatusListCredential
	}
	return e.RevocationListCredential
}
