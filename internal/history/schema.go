package history

// SchemaVersion is the current history schema version
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- One row per notification shown to the user
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    timestamp TEXT NOT NULL,
    severity TEXT NOT NULL,
    operation TEXT NOT NULL,
    message TEXT NOT NULL,
    email TEXT DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);
`
