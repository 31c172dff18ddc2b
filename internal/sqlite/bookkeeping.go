package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// Ledger description prefixes written by the bookkeeping operations.
const (
	settlementPrefix  = "Settlement: "
	acquisitionPrefix = "Acquisition: "
	maintenancePrefix = "Maintenance: "
	salePrefix        = "Sale: "
	reversalPrefix    = "Reversal: "
)

// SettleAccount marks a pending account paid on paidOn and appends its
// ledger transaction: minus the amount for a payable, plus for a
// receivable. Both writes commit together or not at all.
func (b *Backend) SettleAccount(accountID string, paidOn types.Date) (*types.LedgerTransaction, error) {
	if accountID == "" {
		return nil, types.ErrInvalidID
	}
	if paidOn.IsZero() {
		return nil, types.ErrInvalidDate
	}

	var txn *types.LedgerTransaction
	err := b.withTx(func(tx *sql.Tx) error {
		a, err := getAccount(tx, accountID)
		if err != nil {
			return err
		}
		if err := a.Settle(paidOn); err != nil {
			return err
		}

		amount := a.LedgerAmount()
		txn = &types.LedgerTransaction{
			Description: settlementPrefix + a.Description,
			Amount:      amount,
			Date:        paidOn,
			Kind:        types.KindOf(amount),
			Source:      types.SourceSettlement,
			SourceID:    a.AccountID,
		}
		if err := b.insertLedger(tx, txn); err != nil {
			return err
		}

		res, err := tx.Exec(
			"UPDATE accounts SET status = ?, paid_on = ? WHERE account_id = ? AND status = 'pending'",
			string(types.AccountPaid), formatDate(paidOn), accountID,
		)
		if err != nil {
			return fmt.Errorf("settling account: %w", err)
		}
		if err := requireAffected(res, "settling account"); err != nil {
			return types.ErrAccountSettled
		}
		return nil
	})
	if err != nil {
		b.failed("settle account", err, zap.String("account_id", accountID))
		return nil, err
	}

	b.log.Info("account settled",
		zap.String("account_id", accountID),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("amount", txn.Amount.String()),
	)
	return txn, nil
}

// AcquireAsset inserts the asset and an expense of its acquisition value
// dated on the acquisition day.
func (b *Backend) AcquireAsset(asset *types.Asset) (string, error) {
	if asset == nil {
		return "", types.ErrInvalidData
	}
	asset.Name = strings.TrimSpace(asset.Name)
	if err := asset.Validate(); err != nil {
		return "", err
	}
	id, err := newID()
	if err != nil {
		return "", err
	}

	var txn *types.LedgerTransaction
	err = b.withTx(func(tx *sql.Tx) error {
		now := b.now()
		asset.AssetID = id
		asset.CreatedAt = now
		asset.UpdatedAt = now
		if err := insertAsset(tx, asset); err != nil {
			return err
		}

		amount := asset.AcquisitionValue.Neg()
		txn = &types.LedgerTransaction{
			Description: acquisitionPrefix + asset.Name,
			Amount:      amount,
			Date:        asset.AcquiredOn,
			Kind:        types.KindOf(amount),
			Source:      types.SourceAssetAcquisition,
			SourceID:    id,
		}
		return b.insertLedger(tx, txn)
	})
	if err != nil {
		asset.AssetID = ""
		b.failed("acquire asset", err, zap.String("name", asset.Name))
		return "", err
	}

	b.log.Info("asset acquired",
		zap.String("asset_id", id),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("amount", txn.Amount.String()),
	)
	return id, nil
}

// RegisterMaintenance inserts the record, appends an expense of its cost and
// moves the asset to in_maintenance.
func (b *Backend) RegisterMaintenance(record *types.MaintenanceRecord) (string, error) {
	if record == nil {
		return "", types.ErrInvalidData
	}
	if err := record.Validate(); err != nil {
		return "", err
	}
	id, err := newID()
	if err != nil {
		return "", err
	}

	var txn *types.LedgerTransaction
	err = b.withTx(func(tx *sql.Tx) error {
		asset, err := getAsset(tx, record.AssetID)
		if err != nil {
			return err
		}

		now := b.now()
		record.MaintenanceID = id
		record.CreatedAt = now
		if err := insertMaintenance(tx, record); err != nil {
			return err
		}

		amount := record.Cost.Neg()
		txn = &types.LedgerTransaction{
			Description: maintenancePrefix + asset.Name + " - " + record.Description,
			Amount:      amount,
			Date:        record.Date,
			Kind:        types.KindOf(amount),
			Source:      types.SourceMaintenance,
			SourceID:    id,
		}
		if err := b.insertLedger(tx, txn); err != nil {
			return err
		}

		if err := asset.SetStatus(types.AssetInMaintenance, now); err != nil {
			return err
		}
		_, err = tx.Exec(
			"UPDATE assets SET status = ?, updated_at = ? WHERE asset_id = ?",
			string(asset.Status), formatTime(asset.UpdatedAt), asset.AssetID,
		)
		if err != nil {
			return fmt.Errorf("updating asset status: %w", err)
		}
		return nil
	})
	if err != nil {
		record.MaintenanceID = ""
		b.failed("register maintenance", err, zap.String("asset_id", record.AssetID))
		return "", err
	}

	b.log.Info("maintenance registered",
		zap.String("maintenance_id", id),
		zap.String("asset_id", record.AssetID),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("amount", txn.Amount.String()),
	)
	return id, nil
}

// SellAsset appends the sale income and removes the asset along with its
// maintenance records. A zero sale value is allowed.
func (b *Backend) SellAsset(assetID string, saleValue decimal.Decimal, soldOn types.Date) (*types.LedgerTransaction, error) {
	if assetID == "" {
		return nil, types.ErrInvalidID
	}
	if saleValue.IsNegative() {
		return nil, fmt.Errorf("%w: sale value must not be negative", types.ErrInvalidAmount)
	}
	if soldOn.IsZero() {
		return nil, types.ErrInvalidDate
	}

	var txn *types.LedgerTransaction
	err := b.withTx(func(tx *sql.Tx) error {
		asset, err := getAsset(tx, assetID)
		if err != nil {
			return err
		}

		txn = &types.LedgerTransaction{
			Description: salePrefix + asset.Name,
			Amount:      saleValue,
			Date:        soldOn,
			Kind:        types.KindOf(saleValue),
			Source:      types.SourceAssetSale,
			SourceID:    assetID,
		}
		if err := b.insertLedger(tx, txn); err != nil {
			return err
		}

		res, err := tx.Exec("DELETE FROM assets WHERE asset_id = ?", assetID)
		if err != nil {
			return fmt.Errorf("removing sold asset: %w", err)
		}
		return requireAffected(res, "removing sold asset")
	})
	if err != nil {
		b.failed("sell asset", err, zap.String("asset_id", assetID))
		return nil, err
	}

	b.log.Info("asset sold",
		zap.String("asset_id", assetID),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("amount", txn.Amount.String()),
	)
	return txn, nil
}

// AddStock adds quantity to the stock item called name, creating the item
// with unit when none exists. An existing item keeps its unit.
func (b *Backend) AddStock(name string, quantity decimal.Decimal, unit string) (*types.StockItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", types.ErrInvalidQuantity)
	}
	unit = strings.TrimSpace(unit)

	var item *types.StockItem
	err := b.withTx(func(tx *sql.Tx) error {
		now := b.now()
		existing, err := getStockByName(tx, name)
		switch {
		case errors.Is(err, types.ErrNotFound):
			id, err := newID()
			if err != nil {
				return err
			}
			item = &types.StockItem{
				StockItemID: id,
				Name:        name,
				Quantity:    quantity,
				Unit:        unit,
				UpdatedAt:   now,
			}
			if err := item.Validate(); err != nil {
				return err
			}
			return insertStock(tx, item)
		case err != nil:
			return err
		}

		existing.Quantity = existing.Quantity.Add(quantity)
		existing.UpdatedAt = now
		res, err := tx.Exec(
			"UPDATE stock SET quantity = ?, updated_at = ? WHERE stock_item_id = ?",
			existing.Quantity, formatTime(now), existing.StockItemID,
		)
		if err != nil {
			return fmt.Errorf("adding stock: %w", err)
		}
		if err := requireAffected(res, "adding stock"); err != nil {
			return err
		}
		item = existing
		return nil
	})
	if err != nil {
		b.failed("add stock", err, zap.String("name", name))
		return nil, err
	}

	b.log.Info("stock added",
		zap.String("stock_item_id", item.StockItemID),
		zap.String("quantity", quantity.String()),
		zap.String("balance", item.Quantity.String()),
	)
	return item, nil
}

// HarvestSeason closes an active season with its total yield in kilograms.
func (b *Backend) HarvestSeason(seasonID string, totalYieldKg float64, on types.Date) (*types.Season, error) {
	if seasonID == "" {
		return nil, types.ErrInvalidID
	}

	var season *types.Season
	err := b.withTx(func(tx *sql.Tx) error {
		s, err := getSeason(tx, seasonID)
		if err != nil {
			return err
		}
		if err := s.Harvest(totalYieldKg, on); err != nil {
			return err
		}
		res, err := tx.Exec(
			`UPDATE seasons SET status = ?, total_yield_kg = ?, harvested_on = ?
			 WHERE season_id = ? AND status = 'active'`,
			string(s.Status), s.TotalYieldKg, formatDate(s.HarvestedOn), seasonID,
		)
		if err != nil {
			return fmt.Errorf("harvesting season: %w", err)
		}
		if err := requireAffected(res, "harvesting season"); err != nil {
			return types.ErrInvalidTransition
		}
		season = s
		return nil
	})
	if err != nil {
		b.failed("harvest season", err, zap.String("season_id", seasonID))
		return nil, err
	}

	b.log.Info("season harvested",
		zap.String("season_id", seasonID),
		zap.Float64("total_yield_kg", season.TotalYieldKg),
	)
	return season, nil
}

// ReverseTransaction appends the negation of a transaction, dated on (or on
// the original date when on is zero). A transaction is reversed at most
// once and reversals are final.
func (b *Backend) ReverseTransaction(transactionID string, on types.Date) (*types.LedgerTransaction, error) {
	if transactionID == "" {
		return nil, types.ErrInvalidID
	}

	var txn *types.LedgerTransaction
	err := b.withTx(func(tx *sql.Tx) error {
		orig, err := getTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		if orig.Source == types.SourceReversal {
			return fmt.Errorf("%w: %s is itself a reversal", types.ErrInvalidTransition, transactionID)
		}

		var existing string
		err = tx.QueryRow(
			"SELECT transaction_id FROM ledger WHERE source = 'reversal' AND source_id = ?", transactionID,
		).Scan(&existing)
		if err == nil {
			return fmt.Errorf("%w: %s by %s", types.ErrAlreadyReversed, transactionID, existing)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking reversal: %w", err)
		}

		date := on
		if date.IsZero() {
			date = orig.Date
		}
		amount := orig.Amount.Neg()
		txn = &types.LedgerTransaction{
			Description: reversalPrefix + orig.Description,
			Amount:      amount,
			Date:        date,
			Kind:        types.KindOf(amount),
			Source:      types.SourceReversal,
			SourceID:    transactionID,
		}
		return b.insertLedger(tx, txn)
	})
	if err != nil {
		b.failed("reverse transaction", err, zap.String("transaction_id", transactionID))
		return nil, err
	}

	b.log.Info("transaction reversed",
		zap.String("transaction_id", transactionID),
		zap.String("reversal_id", txn.TransactionID),
		zap.String("amount", txn.Amount.String()),
	)
	return txn, nil
}

func (b *Backend) failed(op string, err error, fields ...zap.Field) {
	b.log.Error(op+" failed", append(fields, zap.Error(err))...)
}
