package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*maintenanceTable)(nil)

const maintenanceColumns = "maintenance_id, asset_id, date, description, cost, created_at"

type maintenanceTable struct {
	backend *Backend
}

// Get retrieves a maintenance record by ID.
func (mt *maintenanceTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := mt.backend.conn()
	if err != nil {
		return nil, err
	}
	m, err := hydrateMaintenance(db.QueryRow(
		"SELECT "+maintenanceColumns+" FROM maintenance_records WHERE maintenance_id = ?", id,
	))
	if err != nil {
		return nil, notFound(err, "getting maintenance record %s", id)
	}
	return m, nil
}

// Set with an empty id registers the maintenance (ledger expense and asset
// status). With an id it corrects the record only.
func (mt *maintenanceTable) Set(id string, data any) (string, error) {
	m, ok := data.(*types.MaintenanceRecord)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		return mt.backend.RegisterMaintenance(m)
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	db, err := mt.backend.conn()
	if err != nil {
		return "", err
	}
	m.MaintenanceID = id
	res, err := db.Exec(
		"UPDATE maintenance_records SET asset_id = ?, date = ?, description = ?, cost = ? WHERE maintenance_id = ?",
		m.AssetID, formatDate(m.Date), m.Description, m.Cost, id,
	)
	if err != nil {
		return "", fmt.Errorf("updating maintenance record: %w", err)
	}
	if err := requireAffected(res, "updating maintenance record"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a maintenance record without a ledger entry.
func (mt *maintenanceTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := mt.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM maintenance_records WHERE maintenance_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting maintenance record: %w", err)
	}
	return requireAffected(res, "deleting maintenance record")
}

// Fetch lists maintenance records, most recent first. Filter keys: asset_id,
// limit, offset.
func (mt *maintenanceTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	if assetID, ok, err := filterString(filter, "asset_id"); err != nil {
		return nil, err
	} else if ok {
		where.add("asset_id = ?", assetID)
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := mt.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "maintenance records", hydrateMaintenance,
		"SELECT "+maintenanceColumns+" FROM maintenance_records"+where.String()+
			" ORDER BY date DESC, maintenance_id DESC"+page,
		where.args...,
	)
}

func insertMaintenance(q querier, m *types.MaintenanceRecord) error {
	_, err := q.Exec(
		"INSERT INTO maintenance_records ("+maintenanceColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		m.MaintenanceID, m.AssetID, formatDate(m.Date), m.Description, m.Cost, formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting maintenance record: %w", err)
	}
	return nil
}

func hydrateMaintenance(row rowScanner) (*types.MaintenanceRecord, error) {
	var m types.MaintenanceRecord
	var date sql.NullString
	var createdAt string
	if err := row.Scan(&m.MaintenanceID, &m.AssetID, &date, &m.Description, &m.Cost, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if m.Date, err = parseDate(date, "date"); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &m, nil
}
