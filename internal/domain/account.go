package domain

import (
	"time" // Timestamps

	"gorm.io/datatypes" // JSON column types
)

// Account roles
const (
	RoleUser  = "user"  // Regular player
	RoleAdmin = "admin" // Administrator
)

// Account Model
type Account struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`                    // Primary key
	Email        string                      `gorm:"uniqueIndex;size:191;not null" json:"-"` // Unique email, never exposed publicly
	Handle       string                      `gorm:"uniqueIndex;size:32;not null" json:"handle"`
	PasswordHash string                      `gorm:"not null" json:"-"`                // Bcrypt hash
	Role         string                      `gorm:"size:16;not null" json:"role"`     // Role: user or admin
	Coins        int64                       `gorm:"not null;default:0" json:"coins"`  // Virtual currency balance
	Avatar       EquipRef                    `gorm:"size:64;not null" json:"avatar"`   // Equipped avatar
	Background   EquipRef                    `gorm:"size:64;not null" json:"background"`
	Frame        EquipRef                    `gorm:"size:64;not null" json:"frame"`
	Effect       EquipRef                    `gorm:"size:64;not null" json:"effect"`
	Title        EquipRef                    `gorm:"size:64;not null" json:"title"`
	Badges       datatypes.JSONSlice[string] `json:"badges"`                             // Earned badge ids
	Items        []AccountItem               `gorm:"constraint:OnDelete:CASCADE" json:"-"` // Owned cosmetics
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// NewAccount builds an account with every equip slot on its sentinel.
func NewAccount(email, handle, passwordHash string, coins int64) Account {
	a := Account{
		Email:        email,
		Handle:       handle,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Coins:        coins,
		Badges:       datatypes.JSONSlice[string]{},
	}
	for _, s := range Slots {
		a.SetEquipped(s, s.Sentinel())
	}
	return a
}

// Equipped returns the pointer held by slot.
func (a *Account) Equipped(slot Slot) EquipRef {
	switch slot {
	case SlotAvatar:
		return a.Avatar
	case SlotBackground:
		return a.Background
	case SlotFrame:
		return a.Frame
	case SlotEffect:
		return a.Effect
	case SlotTitle:
		return a.Title
	}
	return ""
}

// SetEquipped points slot at ref.
func (a *Account) SetEquipped(slot Slot, ref EquipRef) {
	switch slot {
	case SlotAvatar:
		a.Avatar = ref
	case SlotBackground:
		a.Background = ref
	case SlotFrame:
		a.Frame = ref
	case SlotEffect:
		a.Effect = ref
	case SlotTitle:
		a.Title = ref
	}
}

// HasBadge reports whether the badge id was already earned.
func (a *Account) HasBadge(id string) bool {
	for _, b := range a.Badges {
		if b == id {
			return true
		}
	}
	return false
}
