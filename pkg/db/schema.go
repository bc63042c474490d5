package db

// schema is applied on first open. Training samples are the hand-off to the
// offline regression trainer; runs give samples a shared identity.
const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Analysis runs: one row per resolve invocation
CREATE TABLE IF NOT EXISTS analysis_runs (
    id TEXT PRIMARY KEY,
    keyword TEXT NOT NULL,
    target_place_id TEXT NOT NULL,
    target_rank INTEGER,
    total_results INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_keyword ON analysis_runs(keyword, created_at);

-- Training samples: one (position, factors) tuple per ranked entity
CREATE TABLE IF NOT EXISTS training_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    keyword TEXT NOT NULL,
    place_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    visitor_reviews INTEGER NOT NULL DEFAULT 0,
    blog_reviews INTEGER NOT NULL DEFAULT 0,
    save_count INTEGER NOT NULL DEFAULT 0,
    freshness_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_samples_keyword ON training_samples(keyword, created_at);
CREATE INDEX IF NOT EXISTS idx_samples_run ON training_samples(run_id);
`
