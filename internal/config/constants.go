package config

// DefaultDatabasePath is the default path for the main application database.
const DefaultDatabasePath = "./atlas.db"

// DefaultPageSize is the fixed page size for book listings.
const DefaultPageSize = 5
