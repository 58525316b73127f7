package order

import (
	"fmt"

	"restaurant-pos/internal/models"
)

const (
	maxCartLines    = 20
	maxLineQuantity = 50
)

// checkout is a validated checkout request
type checkout struct {
	dining   models.DiningOption
	table    int
	eligible bool
}

// validateCheckoutRequest checks the request on its own; the table range is checked by the registry
func validateCheckoutRequest(req *models.CheckoutRequest) (checkout, error) {
	dining, err := validateDiningOption(req.DineInOrTakeout)
	if err != nil {
		return checkout{}, err
	}

	if err := validateTableNumber(dining, req.TableNumber); err != nil {
		return checkout{}, err
	}

	return checkout{dining: dining, table: req.TableNumber, eligible: req.DiscountEligible}, nil
}

func validateDiningOption(option string) (models.DiningOption, error) {
	if option == "" {
		return "", &models.ValidationError{
			Field:   "dine_in_or_takeout",
			Message: "dining option is required",
		}
	}
	return models.ParseDiningOption(option)
}

func validateTableNumber(dining models.DiningOption, table int) error {
	if table < 0 {
		return &models.ValidationError{
			Field:   "table_number",
			Message: "table number must not be negative",
		}
	}

	if dining == models.Takeout && table != models.NoTable {
		return &models.ValidationError{
			Field:   "table_number",
			Message: "takeout orders do not take a table",
		}
	}
	return nil
}

// validateCart checks the cart being turned into an order
func validateCart(cart *models.Cart) error {
	if len(cart.Items) == 0 {
		return models.ErrEmptyCart
	}

	if len(cart.Items) > maxCartLines {
		return &models.ValidationError{
			Field:   "items",
			Message: fmt.Sprintf("a maximum of %d items is allowed", maxCartLines),
		}
	}

	for i, line := range cart.Items {
		if line.Quantity <= 0 || line.Quantity > maxLineQuantity {
			return &models.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("item quantity must be between 1 and %d", maxLineQuantity),
			}
		}
		if line.Price.IsNegative() {
			return &models.ValidationError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: "item price must not be negative",
			}
		}
	}
	return nil
}
