package api

import (
	"net/http" // HTTP status codes

	"matchday/internal/domain"     // Equip refs
	"matchday/internal/middleware" // Session helpers
	"matchday/internal/shop"       // Cosmetics shop

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// PurchaseRequest is the body of POST /api/shop/purchase
type PurchaseRequest struct {
	ItemID string `json:"item_id" binding:"required,max=64"`
}

// EquipRequest is the body of POST /api/shop/equip. item_id may be "default" or "none".
type EquipRequest struct {
	Slot   string `json:"slot" binding:"required,oneof=avatar background frame effect title"`
	ItemID string `json:"item_id" binding:"required,max=64"`
}

// ShopItemsHandler lists the catalog
func ShopItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": shop.Catalog()})
	}
}

// PurchaseHandler buys an item for the caller
func PurchaseHandler(svc *shop.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		var req PurchaseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		inv, err := svc.Purchase(c.Request.Context(), accountID, req.ItemID)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateBalances(c, rdb, accountID) // Price left the balance, leaderboard shows cosmetics
		c.JSON(http.StatusOK, inv)
	}
}

// EquipHandler points one of the caller's slots at an owned item or a sentinel
func EquipHandler(svc *shop.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		var req EquipRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		inv, err := svc.Equip(c.Request.Context(), accountID, req.Slot, domain.EquipRef(req.ItemID))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateBalances(c, rdb) // Leaderboard entries carry equipped cosmetics
		c.JSON(http.StatusOK, inv)
	}
}

// InventoryHandler returns what the caller owns and wears
func InventoryHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		inv, err := svc.Inventory(c.Request.Context(), accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}
