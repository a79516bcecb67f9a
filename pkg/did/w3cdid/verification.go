package w3cdid

type VerificationMethodType string

const (
	Ed25519VerificationKey2018 VerificationMethodType = "Ed25519VerificationKey2018"
	Multikey                   VerificationMethodType = "Multikey"
)

type VerificationMethod struct {
	ID                 string                 `json:"id"`
	Type               VerificationMethodType `json:"type"`
	Controller         string                 `json:"controller"`
	PublicKeyMultibase string                 `json:"publicKeyMultibase,omitempty"`
}
