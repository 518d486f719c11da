package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harshitk-cp/coref/internal/cell"
	"github.com/Harshitk-cp/coref/internal/domain"
)

// ContextSetStore persists context set specs across normalized tables and
// recompiles them into live cells on read.
type ContextSetStore struct {
	db *pgxpool.Pool
}

func NewContextSetStore(db *pgxpool.Pool) *ContextSetStore {
	return &ContextSetStore{db: db}
}

func (s *ContextSetStore) Create(ctx context.Context, cs *domain.ContextSet) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO context_sets (id, name, created_at) VALUES ($1, $2, $3)`,
		cs.ID, cs.Name, cs.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert context set: %w", err)
	}

	for _, node := range cs.Spec.Taxonomy.Nodes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO taxonomy_nodes (context_set_id, node) VALUES ($1, $2)`,
			cs.ID, node,
		); err != nil {
			return fmt.Errorf("insert taxonomy node: %w", err)
		}
	}
	for _, edge := range cs.Spec.Taxonomy.Edges {
		if _, err := tx.Exec(ctx,
			`INSERT INTO taxonomy_edges (context_set_id, parent, child) VALUES ($1, $2, $3)`,
			cs.ID, edge.Parent, edge.Child,
		); err != nil {
			return fmt.Errorf("insert taxonomy edge: %w", err)
		}
	}

	for i, attr := range cs.Spec.Attributes {
		domainJSON, err := json.Marshal(attr.Domain)
		if err != nil {
			return fmt.Errorf("marshal attribute domain: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO context_set_attributes (context_set_id, position, name, type, domain)
			VALUES ($1, $2, $3, $4, $5)`,
			cs.ID, i, attr.Name, attr.Type, domainJSON,
		); err != nil {
			return fmt.Errorf("insert attribute: %w", err)
		}
	}

	for i, e := range cs.Spec.Entities {
		valuesJSON, err := json.Marshal(e.Values)
		if err != nil {
			return fmt.Errorf("marshal entity values: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO entities (context_set_id, idx, kind, attrs) VALUES ($1, $2, $3, $4)`,
			cs.ID, i, e.Kind, valuesJSON,
		); err != nil {
			return fmt.Errorf("insert entity: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *ContextSetStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContextSet, error) {
	var spec domain.Spec
	var storedID uuid.UUID
	var createdAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM context_sets WHERE id = $1`,
		id,
	).Scan(&storedID, &spec.Name, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if spec.Taxonomy.Nodes, err = s.loadNodes(ctx, id); err != nil {
		return nil, err
	}
	if spec.Taxonomy.Edges, err = s.loadEdges(ctx, id); err != nil {
		return nil, err
	}
	if spec.Attributes, err = s.loadAttributes(ctx, id); err != nil {
		return nil, err
	}
	if spec.Entities, err = s.loadEntities(ctx, id); err != nil {
		return nil, err
	}

	cs, err := domain.Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("recompile context set %s: %w", id, err)
	}
	cs.ID = storedID
	cs.CreatedAt = createdAt
	return cs, nil
}

func (s *ContextSetStore) List(ctx context.Context, limit int) ([]domain.ContextSetSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.name, c.created_at, COUNT(e.idx)
		FROM context_sets c
		LEFT JOIN entities e ON e.context_set_id = c.id
		GROUP BY c.id, c.name, c.created_at
		ORDER BY c.created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContextSetSummary
	for rows.Next() {
		var cs domain.ContextSetSummary
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.CreatedAt, &cs.Entities); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *ContextSetStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM context_sets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ContextSetStore) loadNodes(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT node FROM taxonomy_nodes WHERE context_set_id = $1 ORDER BY node`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *ContextSetStore) loadEdges(ctx context.Context, id uuid.UUID) ([]cell.TaxonomyEdge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT parent, child FROM taxonomy_edges WHERE context_set_id = $1 ORDER BY parent, child`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []cell.TaxonomyEdge
	for rows.Next() {
		var e cell.TaxonomyEdge
		if err := rows.Scan(&e.Parent, &e.Child); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *ContextSetStore) loadAttributes(ctx context.Context, id uuid.UUID) ([]domain.AttributeSpec, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, type, domain FROM context_set_attributes
		WHERE context_set_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []domain.AttributeSpec
	for rows.Next() {
		var a domain.AttributeSpec
		var domainJSON []byte
		if err := rows.Scan(&a.Name, &a.Type, &domainJSON); err != nil {
			return nil, err
		}
		if len(domainJSON) > 0 {
			if err := json.Unmarshal(domainJSON, &a.Domain); err != nil {
				return nil, fmt.Errorf("unmarshal attribute domain: %w", err)
			}
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (s *ContextSetStore) loadEntities(ctx context.Context, id uuid.UUID) ([]domain.EntitySpec, error) {
	rows, err := s.db.Query(ctx,
		`SELECT kind, attrs FROM entities WHERE context_set_id = $1 ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []domain.EntitySpec
	for rows.Next() {
		var e domain.EntitySpec
		var valuesJSON []byte
		if err := rows.Scan(&e.Kind, &valuesJSON); err != nil {
			return nil, err
		}
		if len(valuesJSON) > 0 {
			if err := json.Unmarshal(valuesJSON, &e.Values); err != nil {
				return nil, fmt.Errorf("unmarshal entity values: %w", err)
			}
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// Verify interface compliance at compile time
var _ domain.ContextSetStore = (*ContextSetStore)(nil)
