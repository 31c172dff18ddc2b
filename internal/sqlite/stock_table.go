package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*stockTable)(nil)

const stockColumns = "stock_item_id, name, quantity, unit, updated_at"

type stockTable struct {
	backend *Backend
}

// Get retrieves a stock item by ID.
func (st *stockTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := st.backend.conn()
	if err != nil {
		return nil, err
	}
	return getStock(db, id)
}

// Set creates a stock item or overwrites one as a manual correction.
// Restocking goes through AddStock.
func (st *stockTable) Set(id string, data any) (string, error) {
	s, ok := data.(*types.StockItem)
	if !ok {
		return "", types.ErrInvalidData
	}
	s.Name = strings.TrimSpace(s.Name)
	if err := s.Validate(); err != nil {
		return "", err
	}
	db, err := st.backend.conn()
	if err != nil {
		return "", err
	}

	taken, err := nameTaken(db, "stock", "stock_item_id", s.Name, id)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: stock item %q", types.ErrDuplicateName, s.Name)
	}

	s.UpdatedAt = st.backend.now()
	if id == "" {
		newID, err := newID()
		if err != nil {
			return "", err
		}
		s.StockItemID = newID
		if err := insertStock(db, s); err != nil {
			return "", err
		}
		return s.StockItemID, nil
	}

	s.StockItemID = id
	res, err := db.Exec(
		"UPDATE stock SET name = ?, quantity = ?, unit = ?, updated_at = ? WHERE stock_item_id = ?",
		s.Name, s.Quantity, s.Unit, formatTime(s.UpdatedAt), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating stock item: %w", err)
	}
	if err := requireAffected(res, "updating stock item"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a stock item. Activities that referenced it keep their
// quantities but lose the link.
func (st *stockTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := st.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM stock WHERE stock_item_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting stock item: %w", err)
	}
	return requireAffected(res, "deleting stock item")
}

// Fetch lists stock items ordered by name. Filter keys: name, unit, limit,
// offset.
func (st *stockTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	for _, key := range []string{"name", "unit"} {
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
	return fetchAll(db, "stock", hydrateStock,
		"SELECT "+stockColumns+" FROM stock"+where.String()+" ORDER BY name ASC"+page,
		where.args...,
	)
}

func getStock(q querier, id string) (*types.StockItem, error) {
	s, err := hydrateStock(q.QueryRow("SELECT "+stockColumns+" FROM stock WHERE stock_item_id = ?", id))
	if err != nil {
		return nil, notFound(err, "getting stock item %s", id)
	}
	return s, nil
}

func getStockByName(q querier, name string) (*types.StockItem, error) {
	s, err := hydrateStock(q.QueryRow("SELECT "+stockColumns+" FROM stock WHERE name = ?", name))
	if err != nil {
		return nil, notFound(err, "getting stock item %q", name)
	}
	return s, nil
}

func insertStock(q querier, s *types.StockItem) error {
	_, err := q.Exec(
		"INSERT INTO stock ("+stockColumns+") VALUES (?, ?, ?, ?, ?)",
		s.StockItemID, s.Name, s.Quantity, s.Unit, formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting stock item: %w", err)
	}
	return nil
}

// consumeStock subtracts quantity from a stock item. The balance may go
// negative.
func consumeStock(q querier, id string, quantity decimal.Decimal, now time.Time) error {
	s, err := getStock(q, id)
	if err != nil {
		return fmt.Errorf("consuming stock %s: %w", id, err)
	}
	_, err = q.Exec(
		"UPDATE stock SET quantity = ?, updated_at = ? WHERE stock_item_id = ?",
		s.Quantity.Sub(quantity), formatTime(now), id,
	)
	if err != nil {
		return fmt.Errorf("consuming stock %s: %w", id, err)
	}
	return nil
}

func hydrateStock(row rowScanner) (*types.StockItem, error) {
	var s types.StockItem
	var updatedAt string
	if err := row.Scan(&s.StockItemID, &s.Name, &s.Quantity, &s.Unit, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if s.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &s, nil
}
