package store

// SQLite schema for parsed items and their dependency edges. Names are
// unique across the whole store; the import layer decides how qualified
// names collapse before insertion.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL UNIQUE,
    identifier_name TEXT NOT NULL,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    file_path TEXT NOT NULL DEFAULT '',
    line_number INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
CREATE INDEX IF NOT EXISTS idx_items_identifier ON items(identifier_name);

CREATE TABLE IF NOT EXISTS dependencies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    edge_id TEXT NOT NULL UNIQUE,
    source_name TEXT NOT NULL,
    source_type TEXT NOT NULL,
    target_name TEXT NOT NULL,
    dependency_type TEXT NOT NULL DEFAULT 'uses',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(source_name, target_name, dependency_type)
);

CREATE INDEX IF NOT EXISTS idx_dependencies_source ON dependencies(source_name);
CREATE INDEX IF NOT EXISTS idx_dependencies_target ON dependencies(target_name);
`
