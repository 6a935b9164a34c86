package sqlite

import (
	"database/sql"
	"fmt"
)

// schemaVersion is the schema shape this build writes against. Migration
// brings an older store up to date at Attach; repositories are coded against
// the current shape, with column introspection kept only as a write-path
// fallback for stores the migration could not touch.
const schemaVersion = 1

// Table DDL. Timestamps are fixed-width RFC3339 text, booleans are 0/1
// integers, composite list fields are JSON text. Foreign keys are declarative
// references; cascades and re-parenting are handled by the linking layer, not
// the engine.
const (
	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    note_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT,
    tags TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createSparks = `CREATE TABLE IF NOT EXISTS sparks (
    spark_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT,
    tags TEXT,
    linked_entry_ids TEXT,
    category_id TEXT,
    starred INTEGER NOT NULL DEFAULT 0,
    hidden INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createActions = `CREATE TABLE IF NOT EXISTS actions (
    action_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT,
    done INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    priority INTEGER NOT NULL DEFAULT 0,
    due_date TEXT,
    sub_actions TEXT,
    parent_id TEXT,
    parent_type TEXT,
    action_order INTEGER,
    category_id TEXT,
    tags TEXT,
    starred INTEGER NOT NULL DEFAULT 0,
    hidden INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createLoops = `CREATE TABLE IF NOT EXISTS loops (
    loop_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    frequency TEXT,
    start_time_by_day TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    start_date TEXT NOT NULL,
    end_date TEXT,
    tags TEXT,
    category_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createLoopItems = `CREATE TABLE IF NOT EXISTS loop_items (
    item_id TEXT PRIMARY KEY,
    loop_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    duration_minutes INTEGER,
    quantity INTEGER,
    icon TEXT,
    item_order INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (loop_id) REFERENCES loops(loop_id)
);`

	createPaths = `CREATE TABLE IF NOT EXISTS paths (
    path_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    start_date TEXT,
    target_date TEXT,
    tags TEXT,
    category_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createMilestones = `CREATE TABLE IF NOT EXISTS milestones (
    milestone_id TEXT PRIMARY KEY,
    path_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    milestone_order INTEGER NOT NULL DEFAULT 0,
    collapsed INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (path_id) REFERENCES paths(path_id)
);`

	createSagas = `CREATE TABLE IF NOT EXISTS sagas (
    saga_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createChapters = `CREATE TABLE IF NOT EXISTS chapters (
    chapter_id TEXT PRIMARY KEY,
    saga_id TEXT NOT NULL,
    chapter_number INTEGER NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    FOREIGN KEY (saga_id) REFERENCES sagas(saga_id)
);`

	createCategories = `CREATE TABLE IF NOT EXISTS categories (
    category_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    color TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for the common listing and parent-scope queries.
const (
	idxActionsParent   = `CREATE INDEX IF NOT EXISTS idx_actions_parent ON actions(parent_type, parent_id);`
	idxActionsDue      = `CREATE INDEX IF NOT EXISTS idx_actions_due ON actions(due_date);`
	idxMilestonesPath  = `CREATE INDEX IF NOT EXISTS idx_milestones_path ON milestones(path_id);`
	idxLoopItemsLoop   = `CREATE INDEX IF NOT EXISTS idx_loop_items_loop ON loop_items(loop_id);`
	idxChaptersSaga    = `CREATE INDEX IF NOT EXISTS idx_chapters_saga ON chapters(saga_id);`
	idxSparksCreated   = `CREATE INDEX IF NOT EXISTS idx_sparks_created ON sparks(created_at);`
	idxNotesCreated    = `CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at);`
	idxActionsCreated  = `CREATE INDEX IF NOT EXISTS idx_actions_created ON actions(created_at);`
)

// schemaDDL lists CREATE statements in dependency order.
var schemaDDL = []string{
	createCategories,
	createNotes,
	createSparks,
	createActions,
	createLoops,
	createLoopItems,
	createPaths,
	createMilestones,
	createSagas,
	createChapters,
}

var indexDDL = []string{
	idxActionsParent,
	idxActionsDue,
	idxMilestonesPath,
	idxLoopItemsLoop,
	idxChaptersSaga,
	idxSparksCreated,
	idxNotesCreated,
	idxActionsCreated,
}

// migrate brings the store up to the current schema version. Tables are
// created if missing; existing data is never dropped.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("store schema version %d is newer than supported %d", version, schemaVersion)
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	}
	return nil
}
