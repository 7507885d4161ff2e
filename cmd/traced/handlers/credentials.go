package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apicred "github.com/idtrace/traceability-controller/pkg/api/types/credentials"
	apierr "github.com/idtrace/traceability-controller/pkg/api/types/errors"
	"github.com/idtrace/traceability-controller/pkg/auth"
	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/status"
	"github.com/idtrace/traceability-controller/pkg/traction"
	sl "github.com/idtrace/traceability-controller/pkg/vc/statuslist"
	"github.com/idtrace/traceability-controller/pkg/worker"
)

// GetCredentialHandler handles
// GET /:namespace/:label/credentials/:credentialId .
func GetCredentialHandler(dbCred kdb.CredentialInterface, labelParam string, idParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}
		credentialId := strings.ToLower(c.Param(idParam))

		document, err := dbCred.Get(ctx, label, credentialId)
		if errors.Is(err, kdb.ErrNotFound) {
			return apierr.NewErrorMessage(
				http.StatusNotFound,
				fmt.Sprintf("credential %s not found", credentialId),
			)
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, document)
	}
}

// IssueCredentialHandler handles
// POST /:namespace/:label/credentials/issue .
//
// The credential gets an urn:uuid id when it has none, a status list entry
// when the options ask for one, and is signed by the agent with the
// organization's single verification key.
func IssueCredentialHandler(
	database kdb.ControllerDatabase,
	agent traction.Client,
	lists *status.Manager,
	labelParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		request := apicred.IssueRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&request); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest, "format error",
				apierr.WithAdvice(err.Error()), apierr.WithError(err),
			)
		}
		if request.Credential == nil {
			return apierr.BadRequest(`"credential" is required`, nil)
		}

		org, err := database.Organizations().Get(ctx, label)
		if errors.Is(err, kdb.ErrNotFound) {
			return apierr.NewErrorMessage(
				http.StatusNotFound,
				fmt.Sprintf("organization %s is not registered", label),
			)
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		credential := request.Credential
		if credential.ID() == "" {
			credential["id"] = "urn:uuid:" + uuid.NewString()
		}

		if credential.IssuerID() != org.Did {
			return apierr.NewErrorMessage(http.StatusBadRequest, "invalid issuer")
		}

		if request.Options.CredentialStatus != nil {
			listType, err := sl.ParseListType(request.Options.CredentialStatus.Type)
			if err != nil {
				return apierr.BadRequest(
					fmt.Sprintf("unsupported credentialStatus type: %s", request.Options.CredentialStatus.Type),
					err,
				)
			}

			// the allocated index stays claimed even when signing or storing
			// fails below. Entries are never reclaimed; a list holds 2^17 of
			// them, so leaking a few on failed issuances is affordable.
			entry, err := lists.CreateEntry(ctx, org, listType)
			if err != nil {
				return apierr.InternalServerError(err)
			}
			credential.AppendContext(listType.Context())
			if err := credential.SetCredentialStatus(entry); err != nil {
				return apierr.InternalServerError(err)
			}
		}

		// the agent's json-ld route ignores custom created timestamps and
		// requires an explicit proofPurpose, so the options are pinned here.
		options := traction.SignOptions{
			VerificationMethod: org.Did + "#verkey",
			ProofPurpose:       "assertionMethod",
		}

		signed, err := agent.SignDocument(ctx, credential, options, org.Verkey)
		if err != nil {
			return apierr.ServiceUnavailable("agent could not sign the credential", err)
		}

		err = database.Credentials().Store(ctx, label, strings.ToLower(credential.ID()), signed)
		if errors.Is(err, kdb.ErrAlreadyExists) {
			return apierr.Conflict(
				fmt.Sprintf("credential %s is already issued", credential.ID()),
			)
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusCreated, apicred.IssueResponse{VerifiableCredential: signed})
	}
}

// VerkeyResolver maps an issuer DID to the ed25519 key its proof is
// checked against. The controller looks own DIDs up in the agent wallet
// and foreign did:web issuers via their published DID document.
type VerkeyResolver func(ctx context.Context, did string) (string, error)

// VerifyCredentialHandler handles
// POST /:namespace/:label/credentials/verify .
//
// Checks run in order: status (revocation bit), expiry, proof. The response
// is always 200; the outcome lives in the body.
func VerifyCredentialHandler(
	agent traction.Client,
	verkeyFor VerkeyResolver,
	lists *status.Manager,
	labelParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		request := apicred.VerifyRequest{}
		if err := c.Bind(&request); err != nil {
			return apierr.BadRequest("malformed request", err)
		}
		if request.VerifiableCredential == nil {
			return apierr.BadRequest(`"verifiableCredential" is required`, nil)
		}
		document := request.VerifiableCredential

		verification := apicred.NewVerificationResult()

		if entry, ok := document.CredentialStatus(); ok {
			verification.Checks = append(verification.Checks, "status")
			revoked, err := lists.Revoked(ctx, label, entry)
			if err != nil {
				verification.Errors = append(verification.Errors, "status check failed")
			} else if revoked {
				verification.Errors = append(verification.Errors, "revoked")
			}
		}

		if expiration, ok, err := document.ExpirationTime(); err != nil {
			verification.Checks = append(verification.Checks, "expiry")
			verification.Errors = append(verification.Errors, "invalid expirationDate")
		} else if ok {
			verification.Checks = append(verification.Checks, "expiry")
			if expiration.Before(time.Now()) {
				verification.Errors = append(verification.Errors, "expired")
			}
		}

		verification.Checks = append(verification.Checks, "proof")
		if verkey, err := verkeyFor(ctx, document.IssuerID()); err != nil {
			verification.Errors = append(verification.Errors, "verifier error")
		} else if result, err := agent.VerifyDocument(ctx, document, verkey); err != nil {
			verification.Errors = append(verification.Errors, "verifier error")
		} else if !result.Valid {
			verification.Errors = append(verification.Errors, "invalid proof")
		}

		verification.Verified = len(verification.Errors) == 0 && len(verification.Warnings) == 0

		return c.JSON(http.StatusOK, verification)
	}
}

// UpdateCredentialStatusHandler handles
// POST /:namespace/:label/credentials/status .
//
// Status bits are flipped synchronously; re-signing the list credential is
// deferred to the worker pool.
func UpdateCredentialStatusHandler(
	database kdb.ControllerDatabase,
	lists *status.Manager,
	pool *worker.Pool,
	labelParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		request := apicred.UpdateStatusRequest{}
		if err := c.Bind(&request); err != nil {
			return apierr.BadRequest("malformed request", err)
		}
		if request.CredentialId == "" {
			return apierr.BadRequest(`"credentialId" is required`, nil)
		}

		credentialId := strings.ToLower(request.CredentialId)
		document, err := database.Credentials().Get(ctx, label, credentialId)
		if errors.Is(err, kdb.ErrNotFound) {
			return apierr.NewErrorMessage(
				http.StatusNotFound,
				fmt.Sprintf("credential %s not found", credentialId),
			)
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		entry, ok := document.CredentialStatus()
		if !ok {
			return apierr.BadRequest("credential has no credentialStatus", nil)
		}
		listType, err := sl.ParseListType(entry.Type)
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		for _, update := range request.CredentialStatus {
			var value bool
			switch update.Status {
			case "1":
				value = true
			case "0":
				value = false
			default:
				return apierr.BadRequest(
					fmt.Sprintf(`status must be "0" or "1", got %q`, update.Status), nil,
				)
			}

			if err := lists.SetStatus(ctx, label, entry, value); err != nil {
				return apierr.InternalServerError(err)
			}
		}

		job := lists.ResignJob(label, listType)
		if err := pool.Enqueue(fmt.Sprintf("resign %s/%s", label, listType), job); err != nil {
			return apierr.ServiceUnavailable("controller is shutting down", err)
		}

		return c.JSON(http.StatusOK, apicred.MessageResponse{Message: "status updated"})
	}
}

// StatusListCredentialHandler handles
// GET /:namespace/:label/credentials/status/:listType , the public route
// verifiers fetch the signed status list credential from.
func StatusListCredentialHandler(
	dbLists kdb.StatusListInterface,
	labelParam string,
	listTypeParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}
		listType, err := sl.ParseListType(c.Param(listTypeParam))
		if err != nil {
			return apierr.NewErrorMessage(http.StatusNotFound, "status list not found")
		}

		list, err := dbLists.Get(ctx, label, string(listType))
		if errors.Is(err, kdb.ErrNotFound) {
			return apierr.NewErrorMessage(http.StatusNotFound, "status list not found")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, list.Credential)
	}
}
