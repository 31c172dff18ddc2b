package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*assetsTable)(nil)

const assetColumns = "asset_id, name, type, acquired_on, acquisition_value, status, created_at, updated_at"

type assetsTable struct {
	backend *Backend
}

// Get retrieves an asset by ID.
func (at *assetsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := at.backend.conn()
	if err != nil {
		return nil, err
	}
	return getAsset(db, id)
}

// Set with an empty id acquires the asset, writing its acquisition expense
// to the ledger. With an id it edits fields and status without touching the
// ledger; an empty status keeps the stored one.
func (at *assetsTable) Set(id string, data any) (string, error) {
	a, ok := data.(*types.Asset)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		return at.backend.AcquireAsset(a)
	}
	err := at.backend.withTx(func(tx *sql.Tx) error {
		stored, err := getAsset(tx, id)
		if err != nil {
			return err
		}
		status := a.Status
		if status == "" {
			status = stored.Status
		}
		if err := a.SetStatus(status, at.backend.now()); err != nil {
			return err
		}
		if err := a.Validate(); err != nil {
			return err
		}
		a.AssetID = id
		a.CreatedAt = stored.CreatedAt
		_, err = tx.Exec(
			`UPDATE assets SET name = ?, type = ?, acquired_on = ?, acquisition_value = ?,
			 status = ?, updated_at = ? WHERE asset_id = ?`,
			a.Name, a.Type, formatDate(a.AcquiredOn), a.AcquisitionValue, string(a.Status),
			formatTime(a.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("updating asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an asset and its maintenance records without a ledger
// entry. Use SellAsset to record a sale.
func (at *assetsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := at.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM assets WHERE asset_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return requireAffected(res, "deleting asset")
}

// Fetch lists assets ordered by name. Filter keys: status, type, limit,
// offset.
func (at *assetsTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	if status, ok, err := filterString(filter, "status"); err != nil {
		return nil, err
	} else if ok {
		if _, err := types.ParseAssetStatus(status); err != nil {
			return nil, types.ErrInvalidFilter
		}
		where.add("status = ?", status)
	}
	if typ, ok, err := filterString(filter, "type"); err != nil {
		return nil, err
	} else if ok {
		where.add("type = ?", typ)
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := at.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "assets", hydrateAsset,
		"SELECT "+assetColumns+" FROM assets"+where.String()+" ORDER BY name ASC, asset_id ASC"+page,
		where.args...,
	)
}

func getAsset(q querier, id string) (*types.Asset, error) {
	a, err := hydrateAsset(q.QueryRow("SELECT "+assetColumns+" FROM assets WHERE asset_id = ?", id))
	if err != nil {
		return nil, notFound(err, "getting asset %s", id)
	}
	return a, nil
}

func insertAsset(q querier, a *types.Asset) error {
	_, err := q.Exec(
		"INSERT INTO assets ("+assetColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		a.AssetID, a.Name, a.Type, formatDate(a.AcquiredOn), a.AcquisitionValue,
		string(a.Status), formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting asset: %w", err)
	}
	return nil
}

func hydrateAsset(row rowScanner) (*types.Asset, error) {
	var a types.Asset
	var acquiredOn sql.NullString
	var status, createdAt, updatedAt string
	if err := row.Scan(&a.AssetID, &a.Name, &a.Type, &acquiredOn, &a.AcquisitionValue,
		&status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Status = types.AssetStatus(status)
	var err error
	if a.AcquiredOn, err = parseDate(acquiredOn, "acquired_on"); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
