package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apidids "github.com/idtrace/traceability-controller/pkg/api/types/dids"
	apierr "github.com/idtrace/traceability-controller/pkg/api/types/errors"
	"github.com/idtrace/traceability-controller/pkg/auth"
	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/traction"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

// RegisterOrganizationHandler handles POST /:namespace/:label/register .
//
// Idempotent per label: a second registration returns the existing DID with
// a fresh token instead of a new wallet key.
func RegisterOrganizationHandler(
	dbOrg kdb.OrganizationInterface,
	agent traction.Client,
	issuer *auth.TokenIssuer,
	didFor func(label string) string,
	labelParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		org, err := dbOrg.Get(ctx, label)
		switch {
		case err == nil:
			token, err := issuer.Issue(label)
			if err != nil {
				return apierr.InternalServerError(err)
			}
			return c.JSON(http.StatusOK, apidids.RegisterResponse{
				Did: org.Did, Token: token,
			})
		case !errors.Is(err, kdb.ErrNotFound):
			return apierr.InternalServerError(err)
		}

		created, err := agent.CreateDID(ctx)
		if err != nil {
			return apierr.ServiceUnavailable("agent did not create a key", err)
		}

		org, err = dbOrg.Register(ctx, kdb.Organization{
			Label:  label,
			Did:    didFor(label),
			Verkey: created.Verkey,
		})
		if errors.Is(err, kdb.ErrAlreadyExists) {
			// racing registration: serve whatever won.
			if org, err = dbOrg.Get(ctx, label); err != nil {
				return apierr.InternalServerError(err)
			}
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		token, err := issuer.Issue(label)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusCreated, apidids.RegisterResponse{
			Did: org.Did, Token: token,
		})
	}
}

// DIDDocumentHandler handles GET /:namespace/:label/did.json , the public
// did:web resolution endpoint.
func DIDDocumentHandler(dbOrg kdb.OrganizationInterface, labelParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		label, err := auth.FormatLabel(c.Param(labelParam))
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		org, err := dbOrg.Get(ctx, label)
		if errors.Is(err, kdb.ErrNotFound) {
			return apierr.NotFound()
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, vc.NewDIDDocument(org.Did, org.Verkey))
	}
}
