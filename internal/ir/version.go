package ir

// Version constants for the output schema and tool.
const (
	// SchemaVersion is the normalized schema version. Bump it whenever the
	// JSON shape changes so cached entries are not reused.
	SchemaVersion = "1"

	// ToolVersion is the dots version.
	ToolVersion = "0.1.0"
)
