package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/models"
)

// DefaultMenu is the starter menu, the same rows the seed migration inserts
func DefaultMenu() []models.MenuItem {
	item := func(id, name, price string, stock int) models.MenuItem {
		return models.MenuItem{
			ID:    uuid.MustParse(id),
			Name:  name,
			Price: decimal.RequireFromString(price),
			Stock: stock,
		}
	}
	return []models.MenuItem{
		item("6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a01", "Chicken Adobo", "120.00", 40),
		item("6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a02", "Pork Sinigang", "150.00", 30),
		item("6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a03", "Beef Kare Kare", "220.00", 20),
		item("6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a04", "Garlic Rice", "35.00", 100),
		item("6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a05", "Halo Halo", "95.00", 25),
		item("6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a06", "Iced Tea", "45.00", 60),
	}
}
