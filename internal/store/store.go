// Package store persists parsed Acorn items and their dependency edges in
// SQLite, with an in-memory read-through cache for name lookups.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/maypok86/otter"

	"github.com/AIxMath/Acorn-MCP/internal/acorn"
)

// MaxPageSize caps a single page of list results.
const MaxPageSize = 100

const cacheCapacity = 10_000

var (
	// ErrDuplicate is returned when an item with the same name (or UUID)
	// already exists.
	ErrDuplicate = errors.New("item already exists")

	// ErrNotFound is returned when no item matches the lookup.
	ErrNotFound = errors.New("item not found")
)

// Item is a stored Acorn item row.
type Item struct {
	UUID           string    `json:"uuid"`
	Name           string    `json:"name"`
	IdentifierName string    `json:"identifier_name"`
	Kind           string    `json:"kind"`
	Source         string    `json:"source"`
	FilePath       string    `json:"file_path,omitempty"`
	LineNumber     int       `json:"line_number,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// Dependency is a stored edge from one named item to another.
type Dependency struct {
	EdgeID         string `json:"edge_id"`
	SourceName     string `json:"source_name"`
	SourceType     string `json:"source_type"`
	TargetName     string `json:"target_name"`
	DependencyType string `json:"dependency_type"`
}

// Store wraps a SQLite database holding items and dependencies.
type Store struct {
	db    *sql.DB
	cache otter.Cache[string, Item]
}

// Open opens (creating if needed) the item database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	cache, err := otter.MustBuilder[string, Item](cacheCapacity).Build()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build item cache: %w", err)
	}

	return &Store{db: db, cache: cache}, nil
}

// Close releases the cache and the underlying database connection.
func (s *Store) Close() error {
	s.cache.Close()
	return s.db.Close()
}

// AddItem inserts an item. The UUID is derived from the item's name and
// file path when not supplied. Returns ErrDuplicate when the name or UUID
// is already taken.
func (s *Store) AddItem(item Item) error {
	if item.UUID == "" {
		item.UUID = acorn.ItemUUID(item.Name, item.FilePath)
	}
	if item.IdentifierName == "" {
		item.IdentifierName = item.Name
	}

	_, err := sq.Insert("items").
		Columns("uuid", "name", "identifier_name", "kind", "source", "file_path", "line_number").
		Values(item.UUID, item.Name, item.IdentifierName, item.Kind, item.Source, item.FilePath, item.LineNumber).
		RunWith(s.db).
		Exec()
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, item.Name)
		}
		return fmt.Errorf("failed to insert item %s: %w", item.Name, err)
	}

	// Invalidate rather than cache the pre-insert copy, which lacks
	// database-assigned columns like created_at. The next GetItem reads
	// the stored row.
	s.cache.Delete(item.Name)
	return nil
}

// GetItem returns the item with the given name, reading through the cache.
func (s *Store) GetItem(name string) (Item, error) {
	if item, ok := s.cache.Get(name); ok {
		return item, nil
	}

	item, err := s.queryOne(sq.Eq{"name": name})
	if err != nil {
		return Item{}, err
	}

	s.cache.Set(item.Name, item)
	return item, nil
}

// GetItemByUUID returns the item with the given UUID.
func (s *Store) GetItemByUUID(id string) (Item, error) {
	return s.queryOne(sq.Eq{"uuid": id})
}

func (s *Store) queryOne(where sq.Eq) (Item, error) {
	row := sq.Select(itemColumns...).
		From("items").
		Where(where).
		RunWith(s.db).
		QueryRow()

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("failed to query item: %w", err)
	}
	return item, nil
}

// CountItems returns the number of stored items matching the optional
// substring query (over name and source) and kind filter.
func (s *Store) CountItems(query, kind string) (int, error) {
	q := sq.Select("COUNT(*)").From("items")
	q = filterItems(q, query, kind)

	var count int
	if err := q.RunWith(s.db).QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// ListItems returns a page of items ordered by name. A kind filter of ""
// matches everything. The limit is clamped to MaxPageSize.
func (s *Store) ListItems(kind string, limit, offset int) ([]Item, error) {
	return s.SearchItems("", kind, limit, offset)
}

// SearchItems returns a page of items whose name or source contains query,
// ordered by name. An empty query matches everything.
func (s *Store) SearchItems(query, kind string, limit, offset int) ([]Item, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	q := sq.Select(itemColumns...).
		From("items").
		OrderBy("name").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	q = filterItems(q, query, kind)

	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsByKinds returns a page of items whose kind is any of kinds,
// ordered by name. Paging happens in SQL so offsets past the first page
// still see every matching row.
func (s *Store) ListItemsByKinds(kinds []string, limit, offset int) ([]Item, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"kind": kinds}).
		OrderBy("name").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func filterItems(q sq.SelectBuilder, query, kind string) sq.SelectBuilder {
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where(sq.Or{
			sq.Like{"name": pattern},
			sq.Like{"source": pattern},
		})
	}
	if kind != "" {
		q = q.Where(sq.Eq{"kind": kind})
	}
	return q
}

// AllItems returns every stored item ordered by name.
func (s *Store) AllItems() ([]Item, error) {
	rows, err := sq.Select(itemColumns...).
		From("items").
		OrderBy("name").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// AddDependency records an edge. Re-adding the same (source, target, type)
// triple is a no-op.
func (s *Store) AddDependency(dep Dependency) error {
	if dep.EdgeID == "" {
		dep.EdgeID = uuid.NewString()
	}
	if dep.DependencyType == "" {
		dep.DependencyType = "uses"
	}

	_, err := sq.Insert("dependencies").
		Options("OR IGNORE").
		Columns("edge_id", "source_name", "source_type", "target_name", "dependency_type").
		Values(dep.EdgeID, dep.SourceName, dep.SourceType, dep.TargetName, dep.DependencyType).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert dependency %s -> %s: %w", dep.SourceName, dep.TargetName, err)
	}
	return nil
}

// Dependencies returns the outgoing edges of the named item.
func (s *Store) Dependencies(sourceName string) ([]Dependency, error) {
	rows, err := sq.Select(dependencyColumns...).
		From("dependencies").
		Where(sq.Eq{"source_name": sourceName}).
		OrderBy("target_name").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies for %s: %w", sourceName, err)
	}
	defer rows.Close()

	return scanDependencies(rows)
}

// AllItemsWithDependencies loads the complete item and edge sets in one pass,
// for export and graph construction.
func (s *Store) AllItemsWithDependencies() ([]Item, []Dependency, error) {
	items, err := s.AllItems()
	if err != nil {
		return nil, nil, err
	}

	rows, err := sq.Select(dependencyColumns...).
		From("dependencies").
		OrderBy("source_name", "target_name").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dependencies: %w", err)
	}
	defer rows.Close()

	edges, err := scanDependencies(rows)
	if err != nil {
		return nil, nil, err
	}
	return items, edges, nil
}

var itemColumns = []string{"uuid", "name", "identifier_name", "kind", "source", "file_path", "line_number", "created_at"}

var dependencyColumns = []string{"edge_id", "source_name", "source_type", "target_name", "dependency_type"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	err := row.Scan(
		&item.UUID,
		&item.Name,
		&item.IdentifierName,
		&item.Kind,
		&item.Source,
		&item.FilePath,
		&item.LineNumber,
		&item.CreatedAt,
	)
	return item, err
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanDependencies(rows *sql.Rows) ([]Dependency, error) {
	var deps []Dependency
	for rows.Next() {
		var dep Dependency
		if err := rows.Scan(&dep.EdgeID, &dep.SourceName, &dep.SourceType, &dep.TargetName, &dep.DependencyType); err != nil {
			return nil, fmt.Errorf("failed to scan dependency row: %w", err)
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
