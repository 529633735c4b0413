package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for user memories, settings,
// and profiles.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "tripd.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(name string) (int, error) {
	base, _, found := strings.Cut(name, "_")
	if !found {
		return 0, fmt.Errorf("migration file %q missing version prefix", name)
	}
	version, err := strconv.Atoi(base)
	if err != nil {
		return 0, fmt.Errorf("migration file %q has non-numeric version: %w", name, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in
// ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- User memories ---

func (s *Store) AppendMemory(m MemoryRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO user_memories (id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)`,
		m.ID, m.UserID, m.Content, m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecentMemories returns up to limit memories for userID, newest first.
func (s *Store) RecentMemories(userID string, limit int) ([]MemoryRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, content, created_at
		FROM user_memories WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryRecord
	for rows.Next() {
		var m MemoryRecord
		var createdAt string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		m.CreatedAt = t
		results = append(results, m)
	}
	return results, rows.Err()
}

// --- User settings ---

// GetSettings returns the settings document for userID, or ErrNotFound.
func (s *Store) GetSettings(userID string) (Settings, error) {
	doc, err := s.getDoc("user_settings", "settings_json", userID)
	if err != nil {
		return nil, err
	}
	return Settings(doc), nil
}

// SaveSettings merges partial into the stored settings document, creating it
// if absent. Keys present in partial overwrite stored keys; other stored
// keys are preserved.
func (s *Store) SaveSettings(userID string, partial Settings) error {
	return s.mergeDoc("user_settings", "settings_json", userID, map[string]any(partial))
}

// --- User profiles ---

// GetProfile returns the profile document for userID, or ErrNotFound.
func (s *Store) GetProfile(userID string) (Profile, error) {
	doc, err := s.getDoc("user_profiles", "profile_json", userID)
	if err != nil {
		return nil, err
	}
	return Profile(doc), nil
}

// SaveProfile merges partial into the stored profile document, creating it
// if absent.
func (s *Store) SaveProfile(userID string, partial Profile) error {
	return s.mergeDoc("user_profiles", "profile_json", userID, map[string]any(partial))
}

func (s *Store) getDoc(table, column, userID string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ?", column, table), userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decoding %s for %s: %w", column, userID, err)
	}
	return doc, nil
}

func (s *Store) mergeDoc(table, column, userID string, partial map[string]any) error {
	existing, err := s.getDoc(table, column, userID)
	if err == ErrNotFound {
		existing = make(map[string]any)
	} else if err != nil {
		return err
	}

	for k, v := range partial {
		existing[k] = v
	}

	raw, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", column, err)
	}

	_, err = s.db.Exec(fmt.Sprintf(`
		INSERT INTO %s (user_id, %s, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET %s = excluded.%s, updated_at = excluded.updated_at`,
		table, column, column, column),
		userID, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
