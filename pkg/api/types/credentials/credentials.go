package credentials

import (
	"github.com/idtrace/traceability-controller/pkg/vc"
)

// StatusOption asks the issue route to make the credential revocable
// with the given status list flavour (StatusList2021Entry or
// RevocationList2020Status).
type StatusOption struct {
	Type string `json:"type"`
}

type IssueOptions struct {
	Created            string        `json:"created,omitempty"`
	VerificationMethod string        `json:"verificationMethod,omitempty"`
	ProofPurpose       string        `json:"proofPurpose,omitempty"`
	CredentialStatus   *StatusOption `json:"credentialStatus,omitempty"`
}

type IssueRequest struct {
	Credential vc.Document  `json:"credential"`
	Options    IssueOptions `json:"options"`
}

type IssueResponse struct {
	VerifiableCredential vc.Document `json:"verifiableCredential"`
}

type VerifyRequest struct {
	VerifiableCredential vc.Document `json:"verifiableCredential"`
}

// VerificationResult aggregates the per-check outcomes of the verify
// route: "status", "expiry" and "proof".
type VerificationResult struct {
	Verified bool     `json:"verified"`
	Checks   []string `json:"checks"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewVerificationResult returns a result whose slices render as [] in
// JSON, not null.
func NewVerificationResult() VerificationResult {
	return VerificationResult{
		Checks:   []string{},
		Errors:   []string{},
		Warnings: []string{},
	}
}

// StatusUpdate flips one status bit. Status is "1" to set (revoke) and
// "0" to clear.
type StatusUpdate struct {
	Type   string `json:"type,omitempty"`
	Status string `json:"status"`
}

type UpdateStatusRequest struct {
	CredentialId     string         `json:"credentialId"`
	CredentialStatus []StatusUpdate `json:"credentialStatus"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
