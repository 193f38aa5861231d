package ledger

import (
	"errors"
	"testing"

	"matchday/internal/dbtest"
	"matchday/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_DebitAndCredit(t *testing.T) {
	db := dbtest.Open(t)
	acc := dbtest.SeedAccount(t, db, "alice", 100)

	bal, err := Apply(db, acc.ID, -40, domain.TxWagerStake, "prediction:1")
	require.NoError(t, err)
	assert.EqualValues(t, 60, bal)

	bal, err = Apply(db, acc.ID, 80, domain.TxWagerWin, "prediction:1")
	require.NoError(t, err)
	assert.EqualValues(t, 140, bal)
	assert.EqualValues(t, 140, dbtest.Balance(t, db, acc.ID))

	var entries []domain.CoinTransaction
	require.NoError(t, db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.EqualValues(t, -40, entries[0].Amount)
	assert.EqualValues(t, 60, entries[0].BalanceAfter)
	assert.Equal(t, domain.TxWagerWin, entries[1].Type)
}

func TestApply_RejectsOverdraw(t *testing.T) {
	db := dbtest.Open(t)
	acc := dbtest.SeedAccount(t, db, "bob", 30)

	_, err := Apply(db, acc.ID, -31, domain.TxWagerStake, "")
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INSUFFICIENT_BALANCE", appErr.Code)
	assert.EqualValues(t, 30, dbtest.Balance(t, db, acc.ID))

	var n int64
	require.NoError(t, db.Model(&domain.CoinTransaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestApply_ExactBalanceAllowed(t *testing.T) {
	db := dbtest.Open(t)
	acc := dbtest.SeedAccount(t, db, "carol", 30)

	bal, err := Apply(db, acc.ID, -30, domain.TxShopPurchase, "item:x")
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestApply_UnknownAccount(t *testing.T) {
	db := dbtest.Open(t)

	_, err := Apply(db, 999, 10, domain.TxWagerWin, "")
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Status)
}

func TestHistory_Paginates(t *testing.T) {
	db := dbtest.Open(t)
	acc := dbtest.SeedAccount(t, db, "dave", 100)
	for i := 0; i < 5; i++ {
		_, err := Apply(db, acc.ID, -1, domain.TxWagerStake, "")
		require.NoError(t, err)
	}

	page, err := History(db, acc.ID, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Transactions, 2)
	assert.EqualValues(t, 97, page.Transactions[0].BalanceAfter)
}
