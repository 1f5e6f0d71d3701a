package storage

import (
	"fintrack/internal/auth"
	"fintrack/internal/ledger"
)

// Ensure interface conformance
var (
	_ ledger.Store     = (*FileStore)(nil)
	_ ledger.Store     = (*SQLiteStore)(nil)
	_ ledger.Store     = (*MemoryStore)(nil)
	_ auth.SecretStore = (*FileStore)(nil)
	_ auth.SecretStore = (*SQLiteStore)(nil)
	_ auth.SecretStore = (*MemoryStore)(nil)
)
