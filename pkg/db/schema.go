package db

// schemaSQL defines the translation store schema. The harvest and publish
// pipelines normally run against a database provisioned elsewhere; this is
// embedded so `vocabfeed init-db` and the tests can create one from scratch.
const schemaSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_type TEXT NOT NULL,
    source_path TEXT,
    translation_config TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE,
    source_id INTEGER REFERENCES sources(id),
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS term_fields (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    term_id INTEGER NOT NULL REFERENCES terms(id),
    field_uri TEXT NOT NULL,
    field_term TEXT,
    original_value TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(term_id, field_uri)
);

CREATE TABLE IF NOT EXISTS translations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    term_field_id INTEGER NOT NULL REFERENCES term_fields(id),
    language TEXT,
    value TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'original',
    source TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    modified_at DATETIME,
    UNIQUE(term_field_id, language, value, status)
);

CREATE INDEX IF NOT EXISTS idx_translations_status ON translations(status);
CREATE INDEX IF NOT EXISTS idx_term_fields_term ON term_fields(term_id);
`
