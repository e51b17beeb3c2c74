package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/tracking"
)

// Template is a stored user-trained gesture definition. The pose or path
// payload lives in its own tables and is loaded separately.
type Template struct {
	ID        string
	Name      string
	Kind      gesture.Kind
	Tolerance float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateRepository provides CRUD operations for gesture templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Create inserts a new template.
func (r *TemplateRepository) Create(t *Template) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO templates (id, name, kind, tolerance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(t.Kind), t.Tolerance, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a template by id.
func (r *TemplateRepository) GetByID(id string) (*Template, error) {
	return r.get(`SELECT id, name, kind, tolerance, created_at, updated_at FROM templates WHERE id = ?`, id)
}

// GetByName retrieves a template by its unique name.
func (r *TemplateRepository) GetByName(name string) (*Template, error) {
	return r.get(`SELECT id, name, kind, tolerance, created_at, updated_at FROM templates WHERE name = ?`, name)
}

func (r *TemplateRepository) get(query string, arg any) (*Template, error) {
	t := &Template{}
	var kind string
	err := r.db.QueryRow(query, arg).
		Scan(&t.ID, &t.Name, &kind, &t.Tolerance, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Kind = gesture.Kind(kind)
	return t, nil
}

// List retrieves all templates, newest first.
func (r *TemplateRepository) List() ([]*Template, error) {
	rows, err := r.db.Query(
		`SELECT id, name, kind, tolerance, created_at, updated_at FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t := &Template{}
		var kind string
		if err := rows.Scan(&t.ID, &t.Name, &kind, &t.Tolerance, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Kind = gesture.Kind(kind)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Update updates a template's name, kind, and tolerance.
func (r *TemplateRepository) Update(t *Template) error {
	t.UpdatedAt = time.Now()
	result, err := r.db.Exec(
		`UPDATE templates SET name = ?, kind = ?, tolerance = ?, updated_at = ? WHERE id = ?`,
		t.Name, string(t.Kind), t.Tolerance, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a template; its landmarks and path rows cascade.
func (r *TemplateRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ReplaceLandmarks stores the normalized pose for a static template, wiping
// any previous pose.
func (r *TemplateRepository) ReplaceLandmarks(templateID string, landmarks []tracking.Landmark) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM template_landmarks WHERE template_id = ?`, templateID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO template_landmarks (template_id, landmark_index, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, lm := range landmarks {
		if _, err := stmt.Exec(templateID, i, lm.X, lm.Y, lm.Z); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Landmarks loads the stored pose, ordered by landmark index.
func (r *TemplateRepository) Landmarks(templateID string) ([]tracking.Landmark, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z FROM template_landmarks WHERE template_id = ? ORDER BY landmark_index`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landmarks []tracking.Landmark
	for rows.Next() {
		var lm tracking.Landmark
		if err := rows.Scan(&lm.X, &lm.Y, &lm.Z); err != nil {
			return nil, err
		}
		landmarks = append(landmarks, lm)
	}
	return landmarks, rows.Err()
}

// ReplacePath stores the motion trace for a dynamic template, wiping any
// previous trace.
func (r *TemplateRepository) ReplacePath(templateID string, path []gesture.PathPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM template_paths WHERE template_id = ?`, templateID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO template_paths (template_id, sequence, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, p := range path {
		if _, err := stmt.Exec(templateID, i, p.X, p.Y); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Path loads the stored motion trace in sequence order.
func (r *TemplateRepository) Path(templateID string) ([]gesture.PathPoint, error) {
	rows, err := r.db.Query(
		`SELECT x, y FROM template_paths WHERE template_id = ? ORDER BY sequence`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var path []gesture.PathPoint
	for rows.Next() {
		var p gesture.PathPoint
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, err
		}
		path = append(path, p)
	}
	return path, rows.Err()
}

// LoadGesture assembles a full matching template, pose or path included.
func (r *TemplateRepository) LoadGesture(id string) (*gesture.Template, error) {
	t, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	full := &gesture.Template{
		ID:        t.ID,
		Name:      t.Name,
		Kind:      t.Kind,
		Tolerance: t.Tolerance,
	}
	switch t.Kind {
	case gesture.KindStatic:
		full.Landmarks, err = r.Landmarks(t.ID)
	case gesture.KindDynamic:
		full.Path, err = r.Path(t.ID)
	}
	if err != nil {
		return nil, err
	}
	return full, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
