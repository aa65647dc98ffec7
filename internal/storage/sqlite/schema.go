// ABOUTME: SQLite database schema for canvas storage
// ABOUTME: Creates the blocks and connections tables with their indexes
package sqlite

// SchemaVersion is written to PRAGMA user_version after initialization
const SchemaVersion = 1

// Schema contains all SQL statements for database initialization
const Schema = `
-- Blocks table (canvas items)
CREATE TABLE IF NOT EXISTS blocks (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    content TEXT NOT NULL,
    language TEXT,
    tags TEXT,
    x REAL NOT NULL DEFAULT 0,
    y REAL NOT NULL DEFAULT 0,
    width REAL NOT NULL DEFAULT 0,
    height REAL NOT NULL DEFAULT 0,
    embedding BLOB,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Connections table (edges between blocks)
CREATE TABLE IF NOT EXISTS connections (
    id TEXT PRIMARY KEY,
    from_block TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
    to_block TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(from_block, to_block)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_blocks_created ON blocks(created_at);
CREATE INDEX IF NOT EXISTS idx_blocks_type ON blocks(type);
CREATE INDEX IF NOT EXISTS idx_connections_from ON connections(from_block);
CREATE INDEX IF NOT EXISTS idx_connections_to ON connections(to_block);
`
