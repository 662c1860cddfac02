package testutil

// FixedIDGenerator returns the same compilation ID every time.
//
// Compilation IDs appear in log lines; pinning them keeps captured logs
// byte-identical across runs.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed generator. An empty id defaults to
// "test-compilation".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-compilation"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements pipeline.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
