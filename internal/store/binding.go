package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Binding connects a gesture name to a plugin action, with the dispatch
// policy the handler manager enforces: priority order and a per-binding
// cooldown.
type Binding struct {
	ID         string
	Gesture    string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Priority   int
	Cooldown   time.Duration
	Enabled    bool
	CreatedAt  time.Time
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, gesture, plugin_name, action_name, config, priority, cooldown_ms, enabled, created_at`

// Create inserts a new binding.
func (r *BindingRepository) Create(b *Binding) error {
	b.CreatedAt = time.Now()
	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Gesture, b.PluginName, b.ActionName, string(config),
		b.Priority, b.Cooldown.Milliseconds(), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by id.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	row := r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id)
	b, err := scanBinding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bindings, newest first.
func (r *BindingRepository) List() ([]*Binding, error) {
	return r.list(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY created_at DESC`)
}

// ListEnabled retrieves only enabled bindings, in priority order.
func (r *BindingRepository) ListEnabled() ([]*Binding, error) {
	return r.list(`SELECT ` + bindingColumns + ` FROM bindings WHERE enabled = 1 ORDER BY priority DESC, created_at`)
}

func (r *BindingRepository) list(query string) ([]*Binding, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Update updates an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}
	result, err := r.db.Exec(
		`UPDATE bindings SET gesture = ?, plugin_name = ?, action_name = ?, config = ?,
		 priority = ?, cooldown_ms = ?, enabled = ? WHERE id = ?`,
		b.Gesture, b.PluginName, b.ActionName, string(config),
		b.Priority, b.Cooldown.Milliseconds(), b.Enabled, b.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a binding by id.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var cooldownMs int64
	var enabled int
	err := row.Scan(&b.ID, &b.Gesture, &b.PluginName, &b.ActionName, &config,
		&b.Priority, &cooldownMs, &enabled, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	b.Cooldown = time.Duration(cooldownMs) * time.Millisecond
	b.Enabled = enabled != 0
	return b, nil
}
