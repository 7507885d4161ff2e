package presentations

import (
	"github.com/idtrace/traceability-controller/pkg/vc"
)

type VerifyRequest struct {
	VerifiablePresentation vc.Document `json:"verifiablePresentation"`
	Options                vc.Document `json:"options,omitempty"`
}
