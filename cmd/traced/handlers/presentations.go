package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/idtrace/traceability-controller/pkg/api/types/errors"
	apipres "github.com/idtrace/traceability-controller/pkg/api/types/presentations"
	"github.com/idtrace/traceability-controller/pkg/traction"
	"github.com/idtrace/traceability-controller/pkg/utils/echoutil"
	kstrings "github.com/idtrace/traceability-controller/pkg/utils/strings"
)

// VerifyPresentationHandler handles
// POST /:namespace/:label/presentations/verify .
//
// With a verifier endpoint configured the request is proxied there
// untouched; otherwise the agent verifies the presentation itself.
func VerifyPresentationHandler(agent traction.Client, verifierEndpoint string) echo.HandlerFunc {
	proxyTo := ""
	if verifierEndpoint != "" {
		proxyTo = kstrings.SupplySuffix(verifierEndpoint, "/") + "presentations/verify"
	}

	return func(c echo.Context) error {
		if proxyTo != "" {
			return echoutil.Proxy(&c, proxyTo)
		}

		ctx := c.Request().Context()

		request := apipres.VerifyRequest{}
		if err := c.Bind(&request); err != nil {
			return apierr.BadRequest("malformed request", err)
		}
		if request.VerifiablePresentation == nil {
			return apierr.BadRequest(`"verifiablePresentation" is required`, nil)
		}

		result, err := agent.VerifyPresentation(ctx, request.VerifiablePresentation)
		if err != nil {
			return apierr.ServiceUnavailable("agent could not verify the presentation", err)
		}
		return c.JSON(http.StatusOK, result)
	}
}
