// Package ledger is the only writer of account coin balances.
package ledger

import (
	"errors"
	"fmt"
	"strconv"

	"matchday/internal/domain"

	"gorm.io/gorm"
)

// Apply moves an account balance by delta inside tx and records the entry.
// The update is conditional on the result staying non-negative, so concurrent
// debits can never overdraw an account.
func Apply(tx *gorm.DB, accountID uint, delta int64, kind, ref string) (int64, error) {
	res := tx.Model(&domain.Account{}).
		Where("id = ? AND coins + ? >= 0", accountID, delta).
		Update("coins", gorm.Expr("coins + ?", delta))
	if res.Error != nil {
		return 0, fmt.Errorf("apply %d to account %d: %w", delta, accountID, res.Error)
	}

	if res.RowsAffected == 0 {
		var acc domain.Account
		if err := tx.Select("id").First(&acc, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, domain.ErrNotFound("account", strconv.FormatUint(uint64(accountID), 10))
			}
			return 0, fmt.Errorf("load account %d: %w", accountID, err)
		}
		return 0, domain.ErrInsufficientBalance()
	}

	var balance int64
	if err := tx.Model(&domain.Account{}).Where("id = ?", accountID).Pluck("coins", &balance).Error; err != nil {
		return 0, fmt.Errorf("read balance of account %d: %w", accountID, err)
	}

	entry := domain.CoinTransaction{
		AccountID:    accountID,
		Amount:       delta,
		Type:         kind,
		Reference:    ref,
		BalanceAfter: balance,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("record coin transaction: %w", err)
	}
	return balance, nil
}

// Page is one page of coin history.
type Page struct {
	Transactions []domain.CoinTransaction `json:"transactions"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"page_size"`
	Total        int64                    `json:"total"`
	TotalPages   int                      `json:"total_pages"`
}

// History returns coin transactions of an account, newest first.
func History(db *gorm.DB, accountID uint, page, pageSize int) (*Page, error) {
	q := db.Model(&domain.CoinTransaction{}).Where("account_id = ?", accountID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count coin transactions: %w", err)
	}
	var txs []domain.CoinTransaction
	if err := q.Order("created_at desc, id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list coin transactions: %w", err)
	}
	return &Page{
		Transactions: txs,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   (int(total) + pageSize - 1) / pageSize,
	}, nil
}
