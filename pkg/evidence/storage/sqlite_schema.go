package storage

// SchemaVersion is the current evidence database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the evidence database schema.
// The evidence table is append-only: request_id is the primary key and
// stores use plain INSERT, so a duplicate write fails instead of mutating
// an existing record.
const Schema = `
CREATE TABLE IF NOT EXISTS evidence (
    request_id TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,
    request_text TEXT NOT NULL,

    -- User attributes
    user_role TEXT NOT NULL,
    user_region TEXT,
    user_purpose TEXT,

    -- Policy decision
    policy_result TEXT NOT NULL,
    policy_reason TEXT,
    constraints_applied TEXT,

    -- Metric and data product identities
    metric_ids TEXT,
    metric_versions TEXT,
    data_products TEXT,
    product_versions TEXT,

    -- Quality snapshot at execution time
    quality_snapshot TEXT,

    -- Compiled SQL
    final_sql TEXT NOT NULL,
    canonical_sql TEXT NOT NULL,
    sql_hash TEXT NOT NULL,

    -- Results
    row_count INTEGER NOT NULL,
    suppression_count INTEGER NOT NULL,

    -- References
    lineage_event_id TEXT,
    export_path TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evidence_timestamp ON evidence(timestamp);
CREATE INDEX IF NOT EXISTS idx_evidence_user_role ON evidence(user_role);
CREATE INDEX IF NOT EXISTS idx_evidence_policy_result ON evidence(policy_result);
CREATE INDEX IF NOT EXISTS idx_evidence_sql_hash ON evidence(sql_hash);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
