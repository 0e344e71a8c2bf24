package graphmodel

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gc "github.com/phanxgames/graphcanvas"
	_ "modernc.org/sqlite"
)

// LayoutStore persists node locations per named layout in SQLite.
type LayoutStore struct {
	db *sql.DB
}

// LayoutInfo summarizes a saved layout.
type LayoutInfo struct {
	Name    string
	Nodes   int
	SavedAt time.Time
}

// OpenLayoutStore opens or creates a layout database at path. Use
// ":memory:" for a throwaway store.
func OpenLayoutStore(path string) (*LayoutStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening layout store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createLayoutSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating layout schema: %w", err)
	}
	return &LayoutStore{db: db}, nil
}

// Close closes the database.
func (s *LayoutStore) Close() error {
	return s.db.Close()
}

func createLayoutSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS layouts (
			name TEXT PRIMARY KEY,
			graph_type TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS node_locations (
			layout TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
			node_id TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			PRIMARY KEY (layout, node_id)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the layout called name with the current node locations of
// g and returns the number of nodes written.
func (s *LayoutStore) Save(ctx context.Context, name string, g *Graph) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("saving layout %q: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_locations WHERE layout = ?`, name); err != nil {
		return 0, fmt.Errorf("clearing layout %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO layouts (name, graph_type, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET graph_type = excluded.graph_type, saved_at = excluded.saved_at`,
		name, g.GraphType(), time.Now().Unix()); err != nil {
		return 0, fmt.Errorf("saving layout %q: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO node_locations (layout, node_id, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("saving layout %q: %w", name, err)
	}
	defer stmt.Close()

	count := 0
	for _, n := range g.Nodes() {
		loc := n.Location()
		if _, err := stmt.ExecContext(ctx, name, n.GUID().String(), loc.X, loc.Y); err != nil {
			return 0, fmt.Errorf("saving node %s: %w", n.GUID(), err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing layout %q: %w", name, err)
	}
	return count, nil
}

// Load returns the stored locations of the layout called name. A missing
// layout yields an empty map.
func (s *LayoutStore) Load(ctx context.Context, name string) (map[gc.NodeGUID]gc.Vec2, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT node_id, x, y FROM node_locations WHERE layout = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("loading layout %q: %w", name, err)
	}
	defer rows.Close()

	out := make(map[gc.NodeGUID]gc.Vec2)
	for rows.Next() {
		var idStr string
		var loc gc.Vec2
		if err := rows.Scan(&idStr, &loc.X, &loc.Y); err != nil {
			return nil, fmt.Errorf("scanning layout %q: %w", name, err)
		}
		id, err := gc.ParseNodeGUID(idStr)
		if err != nil {
			return nil, fmt.Errorf("layout %q: %w", name, err)
		}
		out[id] = loc
	}
	return out, rows.Err()
}

// Apply moves the nodes of g to the locations stored under name and
// returns how many nodes moved. Stored nodes missing from g are ignored.
func (s *LayoutStore) Apply(ctx context.Context, name string, g *Graph) (int, error) {
	locs, err := s.Load(ctx, name)
	if err != nil {
		return 0, err
	}
	moved := 0
	for id, loc := range locs {
		if n, ok := g.Lookup(id); ok {
			n.SetLocation(loc)
			moved++
		}
	}
	return moved, nil
}

// List returns every saved layout, most recent first.
func (s *LayoutStore) List(ctx context.Context) ([]LayoutInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.name, l.saved_at, COUNT(n.node_id)
		FROM layouts l LEFT JOIN node_locations n ON n.layout = l.name
		GROUP BY l.name
		ORDER BY l.saved_at DESC, l.name`)
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	defer rows.Close()

	var out []LayoutInfo
	for rows.Next() {
		var info LayoutInfo
		var savedAt int64
		if err := rows.Scan(&info.Name, &savedAt, &info.Nodes); err != nil {
			return nil, fmt.Errorf("scanning layouts: %w", err)
		}
		info.SavedAt = time.Unix(savedAt, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the layout called name and reports whether it existed.
func (s *LayoutStore) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("deleting layout %q: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_locations WHERE layout = ?`, name); err != nil {
		return false, fmt.Errorf("deleting layout %q: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("deleting layout %q: %w", name, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("deleting layout %q: %w", name, err)
	}
	return n > 0, nil
}
