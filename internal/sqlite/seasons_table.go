package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*seasonsTable)(nil)

const seasonColumns = "season_id, crop, start_year, plot_id, status, total_yield_kg, harvested_on, created_at"

type seasonsTable struct {
	backend *Backend
}

// Get retrieves a season by ID.
func (st *seasonsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := st.backend.conn()
	if err != nil {
		return nil, err
	}
	return getSeason(db, id)
}

// Set creates an active, unharvested season when id is empty, otherwise
// updates crop, year and plot. Status and yield only change through
// HarvestSeason.
func (st *seasonsTable) Set(id string, data any) (string, error) {
	s, ok := data.(*types.Season)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		s.Status = types.SeasonActive
		s.TotalYieldKg = 0
		s.HarvestedOn = types.Date{}
	}
	if err := s.Validate(); err != nil {
		return "", err
	}
	db, err := st.backend.conn()
	if err != nil {
		return "", err
	}
	if err := requirePlot(db, s.PlotID); err != nil {
		return "", err
	}

	if id == "" {
		newID, err := newID()
		if err != nil {
			return "", err
		}
		s.SeasonID = newID
		s.CreatedAt = st.backend.now()
		_, err = db.Exec(
			"INSERT INTO seasons ("+seasonColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			s.SeasonID, s.Crop, s.StartYear, s.PlotID, string(s.Status), s.TotalYieldKg,
			formatDate(s.HarvestedOn), formatTime(s.CreatedAt),
		)
		if err != nil {
			return "", fmt.Errorf("inserting season: %w", err)
		}
		return s.SeasonID, nil
	}

	res, err := db.Exec(
		"UPDATE seasons SET crop = ?, start_year = ?, plot_id = ? WHERE season_id = ?",
		s.Crop, s.StartYear, s.PlotID, id,
	)
	if err != nil {
		return "", fmt.Errorf("updating season: %w", err)
	}
	if err := requireAffected(res, "updating season"); err != nil {
		return "", err
	}

	stored, err := getSeason(db, id)
	if err != nil {
		return "", err
	}
	*s = *stored
	return id, nil
}

// Delete removes a season and, by cascade, its activities. Stock drawn by
// those activities is not returned.
func (st *seasonsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := st.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM seasons WHERE season_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting season: %w", err)
	}
	return requireAffected(res, "deleting season")
}

// Fetch lists seasons, newest year first. Filter keys: plot_id, crop,
// status, limit, offset.
func (st *seasonsTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	for _, key := range []string{"plot_id", "crop", "status"} {
		v, ok, err := filterString(filter, key)
		if err != nil {
			return nil, err
		}
		if ok {
			where.add(key+" = ?", v)
		}
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := st.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "seasons", hydrateSeason,
		"SELECT "+seasonColumns+" FROM seasons"+where.String()+" ORDER BY start_year DESC, crop ASC, season_id ASC"+page,
		where.args...,
	)
}

func getSeason(q querier, id string) (*types.Season, error) {
	s, err := hydrateSeason(q.QueryRow("SELECT "+seasonColumns+" FROM seasons WHERE season_id = ?", id))
	if err != nil {
		return nil, notFound(err, "getting season %s", id)
	}
	return s, nil
}

func requirePlot(q querier, plotID string) error {
	var found string
	err := q.QueryRow("SELECT plot_id FROM plots WHERE plot_id = ?", plotID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: plot %s", types.ErrNotFound, plotID)
	}
	if err != nil {
		return fmt.Errorf("checking plot %s: %w", plotID, err)
	}
	return nil
}

func hydrateSeason(row rowScanner) (*types.Season, error) {
	var s types.Season
	var status, createdAt string
	var harvestedOn sql.NullString
	if err := row.Scan(&s.SeasonID, &s.Crop, &s.StartYear, &s.PlotID, &status,
		&s.TotalYieldKg, &harvestedOn, &createdAt); err != nil {
		return nil, err
	}
	s.Status = types.SeasonStatus(status)
	var err error
	if s.HarvestedOn, err = parseDate(harvestedOn, "harvested_on"); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &s, nil
}
