package domain

import "time"

// Category groups shop items
type Category string

const (
	CategoryAvatar     Category = "avatar"
	CategoryBackground Category = "background"
	CategoryFrame      Category = "frame"
	CategoryEffect     Category = "effect"
	CategoryTitle      Category = "title"
	CategoryBadge      Category = "badge" // Collected, never equipped
)

// Slot is one of the five equip pointers on an account
type Slot string

const (
	SlotAvatar     Slot = "avatar"
	SlotBackground Slot = "background"
	SlotFrame      Slot = "frame"
	SlotEffect     Slot = "effect"
	SlotTitle      Slot = "title"
)

// Slots lists every equip slot in display order.
var Slots = []Slot{SlotAvatar, SlotBackground, SlotFrame, SlotEffect, SlotTitle}

// EquipRef is either a sentinel or the id of an owned item.
type EquipRef string

const (
	EquipDefault EquipRef = "default"
	EquipNone    EquipRef = "none"
)

// IsSentinel reports whether r names no item.
func (r EquipRef) IsSentinel() bool {
	return r == EquipDefault || r == EquipNone
}

// Sentinel is the value a slot holds when nothing is equipped.
func (s Slot) Sentinel() EquipRef {
	switch s {
	case SlotAvatar, SlotBackground:
		return EquipDefault
	}
	return EquipNone
}

// ParseSlot validates a slot name coming from a request.
func ParseSlot(name string) (Slot, bool) {
	for _, s := range Slots {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}

// Slot returns the equip slot items of this category go into.
func (c Category) Slot() (Slot, bool) {
	if c == CategoryBadge {
		return "", false
	}
	return ParseSlot(string(c))
}

// Item is a catalog entry
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       int64    `json:"price"`
	Description string   `json:"description,omitempty"`
}

// AccountItem Model records ownership of one catalog item
type AccountItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	AccountID uint      `gorm:"uniqueIndex:idx_account_item;not null" json:"-"`
	ItemID    string    `gorm:"uniqueIndex:idx_account_item;size:64;not null" json:"item_id"`
	Category  Category  `gorm:"size:16;not null" json:"category"`
	CreatedAt time.Time `json:"acquired_at"`
}
