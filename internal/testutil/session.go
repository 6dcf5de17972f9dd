package testutil

// FixedSessionGenerator returns the same journal session token every time.
//
// With a fixed token and a fresh journal, the same move sequence produces a
// byte-identical trace, which is what golden files compare against.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a generator for token.
// If token is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = "test-session-default"
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements journal.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
