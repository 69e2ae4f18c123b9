package domain

// OpResult is the explicit outcome of a pipeline-level operation. Handled
// failures are reported through Success and Message rather than raised as
// errors, so callers can map outcomes without inspecting error types.
type OpResult struct {
	// Success reports whether the operation completed.
	Success bool

	// Message is a human-readable description of the outcome.
	Message string
}

// Failure builds a failed result with the given message.
func Failure(message string) OpResult {
	return OpResult{Success: false, Message: message}
}

// Ok builds a successful result with the given message.
func Ok(message string) OpResult {
	return OpResult{Success: true, Message: message}
}

// IngestResult is the outcome of a document create or update.
type IngestResult struct {
	OpResult

	// DocumentID is the catalog id of the created or updated record.
	DocumentID string

	// VersionHash is the content hash now active for the document.
	VersionHash string

	// ChunkCount is the number of chunks indexed for this version.
	ChunkCount int
}

// Answer is the answer-generation output. The provider may return free text
// or structured JSON; when the payload parses as JSON the fields are kept.
type Answer struct {
	// Text is the raw answer text after code-fence stripping.
	Text string

	// Structured holds the decoded JSON object, nil for free text.
	Structured map[string]any
}

// AskResult is the outcome of a question against the knowledge base.
type AskResult struct {
	OpResult

	// Answer is present only on success.
	Answer *Answer

	// Collections are the collections that were actually searched.
	Collections []string

	// Context is the reranked evidence the answer was grounded on.
	Context ChunksByDocument
}
