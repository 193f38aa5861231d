package shop

import "matchday/internal/domain"

var catalog = []domain.Item{
	{ID: "avatar_striker", Name: "Striker", Category: domain.CategoryAvatar, Price: 150},
	{ID: "avatar_keeper", Name: "Keeper", Category: domain.CategoryAvatar, Price: 150},
	{ID: "avatar_gaffer", Name: "The Gaffer", Category: domain.CategoryAvatar, Price: 400},
	{ID: "bg_stadium_night", Name: "Stadium at Night", Category: domain.CategoryBackground, Price: 250},
	{ID: "bg_terraces", Name: "Terraces", Category: domain.CategoryBackground, Price: 200},
	{ID: "frame_silver", Name: "Silver Frame", Category: domain.CategoryFrame, Price: 300},
	{ID: "frame_gold", Name: "Gold Frame", Category: domain.CategoryFrame, Price: 750},
	{ID: "effect_confetti", Name: "Confetti", Category: domain.CategoryEffect, Price: 500},
	{ID: "effect_flares", Name: "Flares", Category: domain.CategoryEffect, Price: 650},
	{ID: "title_pundit", Name: "Pundit", Category: domain.CategoryTitle, Price: 350},
	{ID: "title_oracle", Name: "The Oracle", Category: domain.CategoryTitle, Price: 1200, Description: "For those who call it exactly."},
	{ID: "badge_supporter", Name: "Supporter", Category: domain.CategoryBadge, Price: 100},
	{ID: "badge_season_ticket", Name: "Season Ticket", Category: domain.CategoryBadge, Price: 900},
}

var byID = func() map[string]domain.Item {
	m := make(map[string]domain.Item, len(catalog))
	for _, it := range catalog {
		m[it.ID] = it
	}
	return m
}()

// Catalog returns every item on sale.
func Catalog() []domain.Item {
	out := make([]domain.Item, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog item by id.
func Lookup(id string) (domain.Item, bool) {
	it, ok := byID[id]
	return it, ok
}
