package vc

const (
	ContextDIDV1          = "https://www.w3.org/ns/did/v1"
	ContextEd25519Suite   = "https://w3id.org/security/suites/ed25519-2018/v1"
	ContextCredentialsV1  = "https://www.w3.org/2018/credentials/v1"
	ContextTraceabilityV1 = "https://w3id.org/traceability/v1"
)

type VerificationMethod struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Controller      string `json:"controller"`
	PublicKeyBase58 string `json:"publicKeyBase58"`
}

type DIDDocument struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	AssertionMethod    []string             `json:"assertionMethod"`
}

// NewDIDDocument builds the did:web document served at
// /organization/:label/did.json .
//
// One verification key per DID, always identified as "#verkey".
func NewDIDDocument(did string, verkey string) DIDDocument {
	keyId := did + "#verkey"
	return DIDDocument{
		Context: []string{ContextDIDV1, ContextEd25519Suite},
		ID:      did,
		VerificationMethod: []VerificationMethod{
			{
				ID:              keyId,
				Type:            "Ed25519VerificationKey2018",
				Controller:      did,
				PublicKeyBase58: verkey,
			},
		},
		Authentication:  []string{keyId},
		AssertionMethod: []string{keyId},
	}
}
