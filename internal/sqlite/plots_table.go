package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*plotsTable)(nil)

const plotColumns = "plot_id, name, area_hectares, created_at"

type plotsTable struct {
	backend *Backend
}

// Get retrieves a plot by ID.
func (pt *plotsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	p, err := hydratePlot(db.QueryRow("SELECT "+plotColumns+" FROM plots WHERE plot_id = ?", id))
	if err != nil {
		return nil, notFound(err, "getting plot %s", id)
	}
	return p, nil
}

// Set creates or updates a plot. Names are unique (ErrDuplicateName).
func (pt *plotsTable) Set(id string, data any) (string, error) {
	p, ok := data.(*types.Plot)
	if !ok {
		return "", types.ErrInvalidData
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return "", err
	}
	db, err := pt.backend.conn()
	if err != nil {
		return "", err
	}

	taken, err := nameTaken(db, "plots", "plot_id", p.Name, id)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: plot %q", types.ErrDuplicateName, p.Name)
	}

	if id == "" {
		newID, err := newID()
		if err != nil {
			return "", err
		}
		p.PlotID = newID
		p.CreatedAt = pt.backend.now()
		_, err = db.Exec(
			"INSERT INTO plots ("+plotColumns+") VALUES (?, ?, ?, ?)",
			p.PlotID, p.Name, p.AreaHectares, formatTime(p.CreatedAt),
		)
		if err != nil {
			return "", fmt.Errorf("inserting plot: %w", err)
		}
		return p.PlotID, nil
	}

	p.PlotID = id
	res, err := db.Exec(
		"UPDATE plots SET name = ?, area_hectares = ? WHERE plot_id = ?",
		p.Name, p.AreaHectares, id,
	)
	if err != nil {
		return "", fmt.Errorf("updating plot: %w", err)
	}
	if err := requireAffected(res, "updating plot"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a plot. A plot that still has seasons cannot be removed
// (ErrInUse).
func (pt *plotsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return pt.backend.withTx(func(tx *sql.Tx) error {
		var seasons int
		if err := tx.QueryRow("SELECT COUNT(*) FROM seasons WHERE plot_id = ?", id).Scan(&seasons); err != nil {
			return fmt.Errorf("counting seasons of plot %s: %w", id, err)
		}
		if seasons > 0 {
			return fmt.Errorf("%w: plot %s has %d seasons", types.ErrInUse, id, seasons)
		}
		res, err := tx.Exec("DELETE FROM plots WHERE plot_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting plot: %w", err)
		}
		return requireAffected(res, "deleting plot")
	})
}

// Fetch lists plots ordered by name. Filter keys: name, limit, offset.
func (pt *plotsTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	if name, ok, err := filterString(filter, "name"); err != nil {
		return nil, err
	} else if ok {
		where.add("name = ?", name)
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "plots", hydratePlot,
		"SELECT "+plotColumns+" FROM plots"+where.String()+" ORDER BY name ASC"+page,
		where.args...,
	)
}

func hydratePlot(row rowScanner) (*types.Plot, error) {
	var p types.Plot
	var createdAt string
	if err := row.Scan(&p.PlotID, &p.Name, &p.AreaHectares, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
