package core

import "github.com/iden3/iden3comm/v2/protocol"

// Default credential predicate: holder proves their birthdate is before
// 2000-01-01 using a signature-based atomic query credential.
const (
	DefaultCircuitID      = "credentialAtomicQuerySigV2"
	DefaultCredentialType = "ageCheck"
	DefaultSchemaContext  = "ipfs://QmbqiY8E1Lq6mneASQTsJSfF57TDRLcKQSi7RUomXS4HFF"
)

// QueryTemplate is the static description of the credential predicate a
// challenge asks the holder to prove. It is built once at startup and
// shared read-only by every issued challenge.
type QueryTemplate struct {
	CircuitID         string
	AllowedIssuers    []string
	Type              string
	Context           string
	CredentialSubject map[string]map[string]any
}

// DefaultQueryTemplate returns the age-check predicate used when no
// overrides are configured.
func DefaultQueryTemplate() QueryTemplate {
	return QueryTemplate{
		CircuitID:      DefaultCircuitID,
		AllowedIssuers: []string{"*"},
		Type:           DefaultCredentialType,
		Context:        DefaultSchemaContext,
		CredentialSubject: map[string]map[string]any{
			"birthdate": {"$lt": 20000101},
		},
	}
}

// Scope renders the template as a zero-knowledge proof request suitable for
// embedding in an authorization request's scope.
func (q QueryTemplate) Scope(id uint32) protocol.ZeroKnowledgeProofRequest {
	subject := make(map[string]any, len(q.CredentialSubject))
	for field, predicate := range q.CredentialSubject {
		subject[field] = predicate
	}

	return protocol.ZeroKnowledgeProofRequest{
		ID:        id,
		CircuitID: q.CircuitID,
		Query: map[string]any{
			"allowedIssuers":    q.AllowedIssuers,
			"type":              q.Type,
			"context":           q.Context,
			"credentialSubject": subject,
		},
	}
}
