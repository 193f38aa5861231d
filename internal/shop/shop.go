// Package shop sells cosmetics for coins and manages what an account has equipped.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"matchday/internal/domain"
	"matchday/internal/ledger"
	"matchday/internal/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles purchases and equips.
type Service struct {
	db      *gorm.DB
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewService creates a shop Service.
func NewService(db *gorm.DB, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{db: db, log: log, metrics: m}
}

// Inventory is what an account owns and wears.
type Inventory struct {
	Coins    int64                           `json:"coins"`
	Items    []domain.AccountItem            `json:"items"`
	Badges   []string                        `json:"badges"`
	Equipped map[domain.Slot]domain.EquipRef `json:"equipped"`
}

// Purchase buys itemID for the account. The first item bought for a slot that
// still holds its sentinel is equipped straight away.
func (s *Service) Purchase(ctx context.Context, accountID uint, itemID string) (*Inventory, error) {
	item, ok := Lookup(itemID)
	if !ok {
		return nil, domain.ErrNotFound("item", itemID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := loadAccount(tx, accountID)
		if err != nil {
			return err
		}
		owned, err := owns(tx, accountID, item.ID)
		if err != nil {
			return err
		}
		if owned {
			return domain.ErrAlreadyOwned(item.ID)
		}
		if acc.Coins < item.Price {
			return domain.ErrInsufficientBalance()
		}
		if _, err := ledger.Apply(tx, accountID, -item.Price, domain.TxShopPurchase, "item:"+item.ID); err != nil {
			return err
		}
		if err := tx.Create(&domain.AccountItem{AccountID: accountID, ItemID: item.ID, Category: item.Category}).Error; err != nil {
			return fmt.Errorf("record ownership: %w", err)
		}

		updates := map[string]any{}
		if item.Category == domain.CategoryBadge && !acc.HasBadge(item.ID) {
			acc.Badges = append(acc.Badges, item.ID)
			updates["badges"] = acc.Badges
		}
		if slot, ok := item.Category.Slot(); ok && acc.Equipped(slot).IsSentinel() {
			updates[string(slot)] = domain.EquipRef(item.ID)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&domain.Account{}).Where("id = ?", accountID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update account cosmetics: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "Purchase failed", logrus.Fields{"account_id": accountID, "item_id": itemID})
	}

	s.metrics.ShopPurchase(string(item.Category))
	s.log.WithFields(logrus.Fields{
		"account_id": accountID,
		"item_id":    item.ID,
		"price":      item.Price,
	}).Info("Item purchased")
	return s.Inventory(ctx, accountID)
}

// Equip points slot at an owned item, or back at the slot sentinel when ref
// is "default" or "none".
func (s *Service) Equip(ctx context.Context, accountID uint, slotName string, ref domain.EquipRef) (*Inventory, error) {
	slot, ok := domain.ParseSlot(slotName)
	if !ok {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown slot %q", slotName))
	}

	value := ref
	if ref.IsSentinel() {
		value = slot.Sentinel()
	} else {
		item, ok := Lookup(string(ref))
		if !ok {
			return nil, domain.ErrNotFound("item", string(ref))
		}
		if itemSlot, ok := item.Category.Slot(); !ok || itemSlot != slot {
			return nil, domain.ErrValidation(fmt.Sprintf("item %s cannot be equipped as %s", item.ID, slot))
		}
		owned, err := owns(s.db.WithContext(ctx), accountID, item.ID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, domain.ErrNotOwned(item.ID)
		}
	}

	res := s.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", accountID).Update(string(slot), value)
	if res.Error != nil {
		return nil, s.fail(res.Error, "Equip failed", logrus.Fields{"account_id": accountID, "slot": slot})
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound("account", strconv.FormatUint(uint64(accountID), 10))
	}
	return s.Inventory(ctx, accountID)
}

// Inventory loads owned items and equipped pointers.
func (s *Service) Inventory(ctx context.Context, accountID uint) (*Inventory, error) {
	db := s.db.WithContext(ctx)
	acc, err := loadAccount(db, accountID)
	if err != nil {
		return nil, err
	}
	var items []domain.AccountItem
	if err := db.Where("account_id = ?", accountID).Order("id").Find(&items).Error; err != nil {
		return nil, domain.ErrInternal("load inventory", err)
	}
	inv := &Inventory{
		Coins:    acc.Coins,
		Items:    items,
		Badges:   []string(acc.Badges),
		Equipped: make(map[domain.Slot]domain.EquipRef, len(domain.Slots)),
	}
	if inv.Badges == nil {
		inv.Badges = []string{}
	}
	for _, slot := range domain.Slots {
		inv.Equipped[slot] = acc.Equipped(slot)
	}
	return inv, nil
}

func (s *Service) fail(err error, msg string, fields logrus.Fields) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	fields["error"] = err.Error()
	s.log.WithFields(fields).Error(msg)
	return domain.ErrInternal(msg, err)
}

func loadAccount(db *gorm.DB, accountID uint) (*domain.Account, error) {
	var acc domain.Account
	err := db.First(&acc, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound("account", strconv.FormatUint(uint64(accountID), 10))
	}
	if err != nil {
		return nil, domain.ErrInternal("load account", err)
	}
	return &acc, nil
}

func owns(db *gorm.DB, accountID uint, itemID string) (bool, error) {
	var n int64
	if err := db.Model(&domain.AccountItem{}).Where("account_id = ? AND item_id = ?", accountID, itemID).Count(&n).Error; err != nil {
		return false, domain.ErrInternal("check ownership", err)
	}
	return n > 0, nil
}
