package domain

// Coin transaction types
const (
	TxSignupBonus  = "signup_bonus"  // Starting balance
	TxWagerStake   = "wager_stake"   // Stake debited on wager creation
	TxWagerWin     = "wager_win"     // Payout credited on settlement
	TxShopPurchase = "shop_purchase" // Cosmetic bought
)

// CoinTransaction Model
type CoinTransaction struct {
	ID           uint   `gorm:"primaryKey" json:"id"`                         // Primary key
	AccountID    uint   `gorm:"index;not null" json:"account_id"`             // Account whose balance moved
	Amount       int64  `gorm:"not null" json:"amount"`                       // Signed amount
	Type         string `gorm:"size:32;not null" json:"type"`                 // Transaction type
	Reference    string `gorm:"size:64" json:"reference,omitempty"`           // What caused it, e.g. prediction:12
	BalanceAfter int64  `gorm:"not null" json:"balance_after"`                // Balance once applied
	CreatedAt    int64  `gorm:"autoCreateTime:milli;index" json:"created_at"` // Timestamp of creation in milliseconds
}
