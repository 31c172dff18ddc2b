package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidate(t *testing.T) {
	on := mustDate("2025-03-01")
	tests := []struct {
		name    string
		entity  interface{ Validate() error }
		wantErr error
	}{
		{"employee ok", &Employee{Name: "Ana", Role: "operator", Salary: dec("2500")}, nil},
		{"employee blank name", &Employee{Name: " ", Role: "operator", Salary: dec("2500")}, ErrInvalidName},
		{"employee no role", &Employee{Name: "Ana", Salary: dec("2500")}, ErrMissingField},
		{"employee zero salary", &Employee{Name: "Ana", Role: "operator"}, ErrInvalidAmount},

		{"plot ok", &Plot{Name: "North", AreaHectares: 0.5}, nil},
		{"plot zero area", &Plot{Name: "North"}, ErrInvalidArea},
		{"plot negative area", &Plot{Name: "North", AreaHectares: -1}, ErrInvalidArea},

		{"season ok", &Season{Crop: "soy", StartYear: 2024, PlotID: "p1"}, nil},
		{"season no crop", &Season{StartYear: 2024, PlotID: "p1"}, ErrMissingField},
		{"season bad year", &Season{Crop: "soy", StartYear: 24, PlotID: "p1"}, ErrInvalidData},
		{"season unknown status", &Season{Crop: "soy", StartYear: 2024, PlotID: "p1", Status: "growing"}, ErrInvalidStatus},

		{"activity ok", &SeasonActivity{SeasonID: "s1", Description: "Sowing", Date: on}, nil},
		{"activity negative cost", &SeasonActivity{SeasonID: "s1", Description: "Sowing", Date: on, TotalCost: dec("-1")}, ErrInvalidAmount},
		{"activity stock without quantity", &SeasonActivity{SeasonID: "s1", Description: "Sowing", Date: on, StockItemID: strPtr("i1")}, ErrInvalidQuantity},
		{"activity no date", &SeasonActivity{SeasonID: "s1", Description: "Sowing"}, ErrInvalidDate},

		{"stock ok", &StockItem{Name: "Urea", Unit: "kg"}, nil},
		{"stock no unit", &StockItem{Name: "Urea"}, ErrMissingField},

		{"asset ok", &Asset{Name: "Tractor", Type: "machinery", AcquiredOn: on, AcquisitionValue: dec("1")}, nil},
		{"asset bad status", &Asset{Name: "Tractor", Type: "machinery", AcquiredOn: on, AcquisitionValue: dec("1"), Status: "broken"}, ErrInvalidStatus},
		{"asset zero value", &Asset{Name: "Tractor", Type: "machinery", AcquiredOn: on}, ErrInvalidAmount},

		{"maintenance ok", &MaintenanceRecord{AssetID: "a1", Date: on, Description: "Oil", Cost: dec("10")}, nil},
		{"maintenance zero cost", &MaintenanceRecord{AssetID: "a1", Date: on, Description: "Oil"}, ErrInvalidAmount},

		{"account ok", &Account{Description: "Seed", Amount: dec("10"), DueDate: on, Kind: AccountPayable}, nil},
		{"account bad kind", &Account{Description: "Seed", Amount: dec("10"), DueDate: on, Kind: "loan"}, ErrInvalidKind},
		{"account negative", &Account{Description: "Seed", Amount: dec("-10"), DueDate: on, Kind: AccountPayable}, ErrInvalidAmount},
		{"account no due date", &Account{Description: "Seed", Amount: dec("10"), Kind: AccountPayable}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestValidate_DefaultsStatus(t *testing.T) {
	s := &Season{Crop: "soy", StartYear: 2024, PlotID: "p1"}
	require.NoError(t, s.Validate())
	assert.Equal(t, SeasonActive, s.Status)

	a := &Asset{Name: "Tractor", Type: "machinery", AcquiredOn: mustDate("2025-01-01"), AcquisitionValue: dec("1")}
	require.NoError(t, a.Validate())
	assert.Equal(t, AssetOperational, a.Status)

	acct := &Account{Description: "Seed", Amount: dec("10"), DueDate: mustDate("2025-01-01"), Kind: AccountReceivable}
	require.NoError(t, acct.Validate())
	assert.Equal(t, AccountPending, acct.Status)
}

func TestAccount_Settle(t *testing.T) {
	a := &Account{Description: "Seed", Amount: dec("250"), DueDate: mustDate("2025-04-01"), Kind: AccountPayable, Status: AccountPending}

	assert.ErrorIs(t, a.Settle(Date{}), ErrInvalidDate)
	assert.Equal(t, AccountPending, a.Status)

	require.NoError(t, a.Settle(mustDate("2025-03-30")))
	assert.Equal(t, AccountPaid, a.Status)
	assert.Equal(t, "2025-03-30", a.PaidOn.String())
	assert.Equal(t, "-250", a.LedgerAmount().String())

	assert.ErrorIs(t, a.Settle(mustDate("2025-03-31")), ErrAccountSettled)
	assert.Equal(t, "2025-03-30", a.PaidOn.String())

	r := &Account{Amount: dec("80.5"), Kind: AccountReceivable}
	assert.Equal(t, "80.5", r.LedgerAmount().String())
}

func TestAsset_SetStatus(t *testing.T) {
	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	a := &Asset{Status: AssetInMaintenance}
	for _, st := range []AssetStatus{AssetInactive, AssetOperational, AssetInMaintenance} {
		require.NoError(t, a.SetStatus(st, at))
		assert.Equal(t, st, a.Status)
	}
	assert.Equal(t, at, a.UpdatedAt)

	later := at.Add(time.Hour)
	assert.ErrorIs(t, a.SetStatus("sold", later), ErrInvalidStatus)
	assert.Equal(t, AssetInMaintenance, a.Status)
	assert.Equal(t, at, a.UpdatedAt, "rejected status leaves the stamp alone")
}

func TestSeason_Harvest(t *testing.T) {
	s := &Season{Crop: "soy", StartYear: 2024, PlotID: "p1", Status: SeasonActive}

	assert.ErrorIs(t, s.Harvest(-1, mustDate("2025-03-01")), ErrInvalidQuantity)
	assert.ErrorIs(t, s.Harvest(100, Date{}), ErrInvalidDate)
	assert.Equal(t, SeasonActive, s.Status)

	require.NoError(t, s.Harvest(3000, mustDate("2025-03-01")))
	assert.Equal(t, SeasonHarvested, s.Status)
	assert.InDelta(t, 50.0, s.YieldSacks(), 1e-9)

	assert.ErrorIs(t, s.Harvest(4000, mustDate("2025-03-02")), ErrInvalidTransition)
	assert.Equal(t, 3000.0, s.TotalYieldKg)
}

func TestSeasonActivity_ConsumesStock(t *testing.T) {
	empty := ""
	item := "i1"
	tests := []struct {
		name string
		a    SeasonActivity
		want bool
	}{
		{"no item", SeasonActivity{QuantityUsed: dec("3")}, false},
		{"empty item", SeasonActivity{StockItemID: &empty, QuantityUsed: dec("3")}, false},
		{"item and quantity", SeasonActivity{StockItemID: &item, QuantityUsed: dec("3")}, true},
		{"item without quantity", SeasonActivity{StockItemID: &item}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.ConsumesStock())
		})
	}
}

func TestLedgerTransaction_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		kind       TransactionKind
		wantAmount string
		wantKind   TransactionKind
		wantErr    error
	}{
		{"positive without kind", "100", "", "100", TransactionIncome, nil},
		{"negative without kind", "-100", "", "-100", TransactionExpense, nil},
		{"positive expense is negated", "100", TransactionExpense, "-100", TransactionExpense, nil},
		{"negative expense kept", "-100", TransactionExpense, "-100", TransactionExpense, nil},
		{"negative income rejected", "-100", TransactionIncome, "", "", ErrInvalidAmount},
		{"unknown kind", "100", "transfer", "", "", ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &LedgerTransaction{Description: "x", Amount: dec(tt.amount), Kind: tt.kind, Date: mustDate("2025-01-01")}
			err := txn.Normalize()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, txn.Amount.String())
			assert.Equal(t, tt.wantKind, txn.Kind)
			assert.Equal(t, SourceManual, txn.Source)
			assert.NoError(t, txn.Validate())
		})
	}
}

func TestLedgerTransaction_Validate(t *testing.T) {
	on := mustDate("2025-01-01")
	tests := []struct {
		name    string
		txn     LedgerTransaction
		wantErr error
	}{
		{"kind mismatch", LedgerTransaction{Description: "x", Amount: dec("5"), Date: on, Kind: TransactionExpense, Source: SourceManual}, ErrInvalidKind},
		{"zero manual", LedgerTransaction{Description: "x", Amount: dec("0"), Date: on, Kind: TransactionIncome, Source: SourceManual}, ErrInvalidAmount},
		{"zero sale", LedgerTransaction{Description: "x", Amount: dec("0"), Date: on, Kind: TransactionIncome, Source: SourceAssetSale}, nil},
		{"unknown source", LedgerTransaction{Description: "x", Amount: dec("5"), Date: on, Kind: TransactionIncome, Source: "gift"}, ErrInvalidData},
		{"no date", LedgerTransaction{Description: "x", Amount: dec("5"), Kind: TransactionIncome, Source: SourceManual}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseEnums(t *testing.T) {
	_, err := ParseAccountKind("payable")
	assert.NoError(t, err)
	_, err = ParseAccountStatus("overdue")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParseSeasonStatus("harvested")
	assert.NoError(t, err)
	_, err = ParseTransactionKind("refund")
	assert.ErrorIs(t, err, ErrInvalidKind)
	_, err = ParseTransactionSource("reversal")
	assert.NoError(t, err)
}
