package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/idtrace/traceability-controller/cmd/traced/handlers"
	"github.com/idtrace/traceability-controller/internal/testutils"
	httptestutil "github.com/idtrace/traceability-controller/internal/testutils/http"
	"github.com/idtrace/traceability-controller/pkg/traction"
	tractionmock "github.com/idtrace/traceability-controller/pkg/traction/mock"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

func TestVerifyPresentationHandler(t *testing.T) {

	invoke := func(t *testing.T, agent *tractionmock.Client, verifierEndpoint string, body string) (error, *httptest.ResponseRecorder) {
		t.Helper()
		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/organization/acme/presentations/verify", strings.NewReader(body),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("label")
		c.SetParamValues("acme")

		err := handlers.VerifyPresentationHandler(agent, verifierEndpoint)(c)
		return err, resp
	}

	t.Run("without a verifier endpoint the agent verifies", func(t *testing.T) {
		agent := tractionmock.New()
		agent.Impl.VerifyPresentation = func(ctx context.Context, presentation vc.Document) (vc.Document, error) {
			if presentation.ID() != "urn:uuid:vp-1" {
				t.Errorf("unexpected presentation: %v", presentation)
			}
			return vc.Document{"verified": true}, nil
		}

		body := `{"verifiablePresentation": {"id": "urn:uuid:vp-1"}}`
		err, resp := invoke(t, agent, "", body)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusOK {
			t.Errorf("unmatch status: %d", resp.Code)
		}

		result := map[string]any{}
		if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
			t.Fatal(err)
		}
		if result["verified"] != true {
			t.Errorf("unexpected result: %v", result)
		}
	})

	t.Run("a missing presentation is 400", func(t *testing.T) {
		err, _ := invoke(t, tractionmock.New(), "", `{}`)
		testutils.AssertHTTPError(t, err, http.StatusBadRequest)
	})

	t.Run("an agent failure is 503", func(t *testing.T) {
		agent := tractionmock.New()
		agent.Impl.VerifyPresentation = func(ctx context.Context, presentation vc.Document) (vc.Document, error) {
			return nil, traction.ErrAgent
		}

		body := `{"verifiablePresentation": {"id": "urn:uuid:vp-1"}}`
		err, _ := invoke(t, agent, "", body)
		testutils.AssertHTTPError(t, err, http.StatusServiceUnavailable)
	})

	t.Run("with a verifier endpoint the request is proxied untouched", func(t *testing.T) {
		verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/presentations/verify" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			payload := map[string]any{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("broken proxied body: %s", err)
			}
			json.NewEncoder(w).Encode(map[string]any{"verified": true, "checks": []string{"proof"}})
		}))
		t.Cleanup(verifier.Close)

		agent := tractionmock.New()

		body := `{"verifiablePresentation": {"id": "urn:uuid:vp-1"}}`
		err, resp := invoke(t, agent, verifier.URL, body)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusOK {
			t.Errorf("unmatch status: %d", resp.Code)
		}
		if agent.Calls.VerifyPresentation.Times() != 0 {
			t.Error("the agent should not be asked")
		}

		result := map[string]any{}
		if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
			t.Fatal(err)
		}
		if result["verified"] != true {
			t.Errorf("unexpected result: %v", result)
		}
	})
}
