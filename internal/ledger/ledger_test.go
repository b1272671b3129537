package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/installment"
	"github.com/Veraticus/ledger/internal/ledger"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
	"github.com/Veraticus/ledger/internal/service"
	"github.com/Veraticus/ledger/internal/testutil"
)

func TestService_AddIncomeAndExpense(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	incomeID, err := db.Ledger.AddIncome(ctx, "Salário", 3000, testutil.Date(2024, time.February, 5))
	require.NoError(t, err)

	expenseID, err := db.Ledger.AddExpense(ctx, "Aluguel", "Moradia", 1200, testutil.Date(2024, time.February, 10))
	require.NoError(t, err)
	assert.NotEqual(t, incomeID, expenseID)

	income, err := db.Ledger.Get(ctx, incomeID)
	require.NoError(t, err)
	assert.Equal(t, model.KindIncome, income.Kind)
	assert.Empty(t, income.Category)

	expense, err := db.Ledger.Get(ctx, expenseID)
	require.NoError(t, err)
	assert.Equal(t, "Moradia", expense.Category)
}

func TestService_AddExpenseRequiresCategory(t *testing.T) {
	db := testutil.SetupLedger(t)

	_, err := db.Ledger.AddExpense(context.Background(), "Lunch", "", 10, time.Time{})
	assert.ErrorIs(t, err, common.ErrConstraint)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestService_AddIncomeZeroTimeIsNow(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	id, err := db.Ledger.AddIncome(ctx, "Pix", 1, time.Time{})
	require.NoError(t, err)

	got, err := db.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.RecordedAt, 5*time.Second)
}

func TestService_AddInstallments(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	ids, err := db.Ledger.AddInstallments(ctx, installment.Plan{
		Description: "TV",
		Category:    "Eletrônicos",
		Amount:      100,
		Count:       3,
		FirstDue:    testutil.Date(2024, time.January, 31),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	wantDays := []struct {
		month time.Month
		day   int
		label string
	}{
		{time.January, 31, "TV (Parcela 1/3)"},
		{time.February, 29, "TV (Parcela 2/3)"},
		{time.March, 31, "TV (Parcela 3/3)"},
	}
	for i, id := range ids {
		txn, err := db.Ledger.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wantDays[i].label, txn.Description)
		assert.Equal(t, wantDays[i].month, txn.RecordedAt.Month())
		assert.Equal(t, wantDays[i].day, txn.RecordedAt.Day())
		assert.InDelta(t, 100.0, txn.Amount, 0.0001)
	}

	feb, err := db.Ledger.List(ctx, period.Filter{Year: 2024, Month: time.February})
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, "TV (Parcela 2/3)", feb[0].Description)
}

func TestService_AddInstallmentsRejectsSingle(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	_, err := db.Ledger.AddInstallments(ctx, installment.Plan{
		Description: "TV", Category: "Casa", Amount: 100, Count: 1, FirstDue: time.Now(),
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	count, err := db.Storage.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// flakyStorage fails every Add after the first allowed ones.
type flakyStorage struct {
	service.Storage
	allowed int
	calls   int
}

var errDiskFull = errors.New("disk full")

func (f *flakyStorage) Add(ctx context.Context, txn model.NewTransaction) (int64, error) {
	f.calls++
	if f.calls > f.allowed {
		return 0, common.NewStorageError("insert transaction", errDiskFull)
	}
	return f.Storage.Add(ctx, txn)
}

func (f *flakyStorage) AddBatch(_ context.Context, _ []model.NewTransaction) ([]int64, error) {
	return nil, common.NewStorageError("begin batch", errDiskFull)
}

func TestService_AddInstallmentsSequentialPartialFailure(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	flaky := &flakyStorage{Storage: db.Storage, allowed: 2}
	svc := ledger.NewWithConfig(flaky, ledger.Config{AtomicInstallments: false})

	ids, err := svc.AddInstallments(ctx, installment.Plan{
		Description: "Sofa", Category: "Casa", Amount: 250, Count: 4, FirstDue: testutil.Date(2024, time.May, 10),
	})
	require.Error(t, err)
	assert.Len(t, ids, 2)

	var partial *common.PartialBatchError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 4, partial.Total)
	assert.Equal(t, ids, partial.Inserted)
	assert.ErrorIs(t, err, common.ErrPartialBatch)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.ErrorIs(t, err, errDiskFull)

	count, err := db.Storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "earlier installments stay stored")
}

func TestService_AddInstallmentsAtomicFailureStoresNothing(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	svc := ledger.New(&flakyStorage{Storage: db.Storage, allowed: 10})

	ids, err := svc.AddInstallments(ctx, installment.Plan{
		Description: "Sofa", Category: "Casa", Amount: 250, Count: 4, FirstDue: testutil.Date(2024, time.May, 10),
	})
	assert.Nil(t, ids)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NotErrorIs(t, err, common.ErrPartialBatch)

	count, err := db.Storage.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_ListAndSummarizeAgree(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Config: ledger.DefaultConfig(),
		Seed: []model.NewTransaction{
			testutil.Income("Salary", 100, testutil.Date(2024, time.February, 1)),
			testutil.Expense("Food", "Alimentação", 40, testutil.Date(2024, time.February, 2)),
			testutil.Expense("Rent", "Moradia", 500, testutil.Date(2024, time.March, 2)),
			testutil.Income("Old", 999, testutil.Date(2023, time.February, 2)),
		},
	})
	ctx := context.Background()

	filter := period.Filter{Year: 2024, Month: time.February}
	txns, err := db.Ledger.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	summary, err := db.Ledger.Summarize(ctx, filter)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, summary.Income, 0.0001)
	assert.InDelta(t, 40.0, summary.Expense, 0.0001)
	assert.InDelta(t, 60.0, summary.Net, 0.0001)
	assert.Equal(t, 2, summary.Count)

	all, err := db.Ledger.Summarize(ctx, period.All)
	require.NoError(t, err)
	assert.InDelta(t, 1099.0-540.0, all.Net, 0.0001)

	empty, err := db.Ledger.Summarize(ctx, period.Filter{Year: 2001})
	require.NoError(t, err)
	assert.Zero(t, empty.Income)
	assert.Zero(t, empty.Expense)
	assert.Zero(t, empty.Net)
}

func TestService_ListByKind(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Config: ledger.DefaultConfig(),
		Seed: []model.NewTransaction{
			testutil.Income("Salary", 100, testutil.Date(2024, time.February, 1)),
			testutil.Expense("Food", "Alimentação", 40, testutil.Date(2024, time.February, 2)),
		},
	})

	expenses, err := db.Ledger.ListByKind(context.Background(), period.All, model.KindExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Description)
}

func TestService_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()
	id := db.MustAdd(testutil.Expense("Lunch", "Food", 20, testutil.Date(2024, time.June, 1)))

	require.NoError(t, db.Ledger.Update(ctx, id, model.Update{Description: "Brunch", Amount: 25, Category: "Food"}))

	got, err := db.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Brunch", got.Description)

	err = db.Ledger.Update(ctx, id+100, model.Update{Description: "x", Amount: 1, Category: "y"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	deleted, err := db.Ledger.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = db.Ledger.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestService_Years(t *testing.T) {
	db := testutil.SetupLedger(t)
	db.MustAdd(testutil.Income("a", 1, testutil.Date(2022, time.March, 1)))
	db.MustAdd(testutil.Income("b", 1, testutil.Date(2024, time.March, 1)))
	db.MustAdd(testutil.Income("c", 1, testutil.Date(2024, time.April, 1)))

	years, err := db.Ledger.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2022}, years)
}

func TestService_Import(t *testing.T) {
	db := testutil.SetupLedger(t)
	ctx := context.Background()

	ids, err := db.Ledger.Import(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = db.Ledger.Import(ctx, []model.NewTransaction{
		testutil.Income("Deposit", 50, testutil.Date(2024, time.July, 1)),
		testutil.Expense("ATM", "Cash & ATM", 20, testutil.Date(2024, time.July, 2)),
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = db.Ledger.Import(ctx, []model.NewTransaction{
		testutil.Income("ok", 1, time.Now()),
		testutil.Expense("no category", "", 1, time.Now()),
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	count, err := db.Storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_Report(t *testing.T) {
	db := testutil.SetupLedger(t)
	db.MustAdd(testutil.Income("Salary", 100, testutil.Date(2024, time.February, 1)))

	report, err := db.Ledger.Report(context.Background(), period.Filter{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 2024, report.Filter.Year)
	assert.Len(t, report.Transactions, 1)
	assert.InDelta(t, 100.0, report.Summary.Net, 0.0001)
}
