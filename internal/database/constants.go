package database

const (
	// DefaultMinConnections keeps a few warm connections so the first
	// requests after an idle period do not pay the connect cost.
	DefaultMinConnections = 2
)

// Error Messages - Pool Setup
const (
	ErrMsgParseConnString = "failed to parse connection string"
	ErrMsgCreatePool      = "failed to create connection pool"
	ErrMsgPingDatabase    = "failed to ping database"
)

// Log Messages
const (
	LogMsgDatabaseConnected = "Connected to the database"
)
