package hashlaser

// Hash size constants
const (
	HashSizeSHA1   = 20 // SHA-1 hash size in bytes
	HashSizeSHA256 = 32 // SHA-256 hash size in bytes
	HashSizeSHA512 = 64 // SHA-512 hash size in bytes
)

// DefaultHashAlgorithm is the fingerprint algorithm used when nothing else is configured
const DefaultHashAlgorithm = "sha256"

// DefaultChunkSize is the read size used when streaming a file through a digest
const DefaultChunkSize = 1024

// Symlink modes for directory traversal
const (
	SymlinkModeNone      = "none"      // never enter symlinked directories
	SymlinkModeContained = "contained" // enter symlinked directories that resolve inside the root
	SymlinkModeAll       = "all"       // enter every symlinked directory
)

// Keep policies for duplicate deletion
const (
	KeepFirst   = "first"   // keep the first path of the group in worker merge order
	KeepLexical = "lexical" // keep the lexicographically smallest path
)

// Output formats
const (
	FormatHuman  = "human"
	FormatJSON   = "json"
	FormatFdupes = "fdupes"
)
