package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*activitiesTable)(nil)

const activityColumns = "activity_id, season_id, description, date, stock_item_id, quantity_used, total_cost, created_at"

type activitiesTable struct {
	backend *Backend
}

// Get retrieves a season activity by ID.
func (at *activitiesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := at.backend.conn()
	if err != nil {
		return nil, err
	}
	a, err := hydrateActivity(db.QueryRow(
		"SELECT "+activityColumns+" FROM season_activities WHERE activity_id = ?", id,
	))
	if err != nil {
		return nil, notFound(err, "getting activity %s", id)
	}
	return a, nil
}

// Set creates or updates an activity. Creating one that references a stock
// item draws QuantityUsed from that item in the same transaction. Updates
// leave stock alone.
func (at *activitiesTable) Set(id string, data any) (string, error) {
	a, ok := data.(*types.SeasonActivity)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	if a.StockItemID != nil && *a.StockItemID == "" {
		a.StockItemID = nil
	}

	if id != "" {
		return at.update(id, a)
	}

	newID, err := newID()
	if err != nil {
		return "", err
	}
	err = at.backend.withTx(func(tx *sql.Tx) error {
		if err := requireSeason(tx, a.SeasonID); err != nil {
			return err
		}
		if a.ConsumesStock() {
			if err := consumeStock(tx, *a.StockItemID, a.QuantityUsed, at.backend.now()); err != nil {
				return err
			}
		}
		a.ActivityID = newID
		a.CreatedAt = at.backend.now()
		return insertActivity(tx, a)
	})
	if err != nil {
		return "", err
	}
	return a.ActivityID, nil
}

func (at *activitiesTable) update(id string, a *types.SeasonActivity) (string, error) {
	db, err := at.backend.conn()
	if err != nil {
		return "", err
	}
	if err := requireSeason(db, a.SeasonID); err != nil {
		return "", err
	}
	a.ActivityID = id
	res, err := db.Exec(
		`UPDATE season_activities SET season_id = ?, description = ?, date = ?,
		 stock_item_id = ?, quantity_used = ?, total_cost = ? WHERE activity_id = ?`,
		a.SeasonID, a.Description, formatDate(a.Date), nullableID(a.StockItemID),
		a.QuantityUsed, a.TotalCost, id,
	)
	if err != nil {
		return "", fmt.Errorf("updating activity: %w", err)
	}
	if err := requireAffected(res, "updating activity"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an activity. Stock it consumed is not returned.
func (at *activitiesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := at.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM season_activities WHERE activity_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return requireAffected(res, "deleting activity")
}

// Fetch lists activities in date order. Filter keys: season_id, limit,
// offset.
func (at *activitiesTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	if seasonID, ok, err := filterString(filter, "season_id"); err != nil {
		return nil, err
	} else if ok {
		where.add("season_id = ?", seasonID)
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := at.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "activities", hydrateActivity,
		"SELECT "+activityColumns+" FROM season_activities"+where.String()+" ORDER BY date ASC, activity_id ASC"+page,
		where.args...,
	)
}

func insertActivity(q querier, a *types.SeasonActivity) error {
	_, err := q.Exec(
		"INSERT INTO season_activities ("+activityColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		a.ActivityID, a.SeasonID, a.Description, formatDate(a.Date), nullableID(a.StockItemID),
		a.QuantityUsed, a.TotalCost, formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func requireSeason(q querier, seasonID string) error {
	var found string
	err := q.QueryRow("SELECT season_id FROM seasons WHERE season_id = ?", seasonID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: season %s", types.ErrNotFound, seasonID)
	}
	if err != nil {
		return fmt.Errorf("checking season %s: %w", seasonID, err)
	}
	return nil
}

func nullableID(id *string) any {
	if id == nil || *id == "" {
		return nil
	}
	return *id
}

func hydrateActivity(row rowScanner) (*types.SeasonActivity, error) {
	var a types.SeasonActivity
	var date sql.NullString
	var stockItemID sql.NullString
	var createdAt string
	if err := row.Scan(&a.ActivityID, &a.SeasonID, &a.Description, &date, &stockItemID,
		&a.QuantityUsed, &a.TotalCost, &createdAt); err != nil {
		return nil, err
	}
	if stockItemID.Valid && stockItemID.String != "" {
		id := stockItemID.String
		a.StockItemID = &id
	}
	var err error
	if a.Date, err = parseDate(date, "date"); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
