package database

// Menu and inventory queries
const (
	GetMenuItemSQL = `
		SELECT id, name, price, stock, sold, image_url
		FROM menu_items WHERE id = $1`

	ListMenuItemsSQL = `
		SELECT id, name, price, stock, sold, image_url
		FROM menu_items
		ORDER BY name ASC`

	ReserveStockSQL = `
		UPDATE menu_items SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING stock`

	GetStockSQL = `
		SELECT name, stock FROM menu_items WHERE id = $1`

	RestockSQL = `
		UPDATE menu_items SET stock = stock + $2
		WHERE id = $1`

	RecordSaleSQL = `
		UPDATE menu_items SET sold = sold + $2
		WHERE id = $1`

	InsertSettlementSQL = `
		INSERT INTO inventory_settlements (order_id, kind)
		VALUES ($1, $2)
		ON CONFLICT (order_id, kind) DO NOTHING`
)

// Order counter queries
const (
	NextOrderNumberSQL = `
		UPDATE order_counter SET last_number = last_number + 1
		WHERE id = 1
		RETURNING last_number`
)

// Table queries
const (
	EnsureTablesSQL = `
		INSERT INTO dining_tables (table_number)
		SELECT generate_series(1, $1)
		ON CONFLICT (table_number) DO NOTHING`

	AcquireTableSQL = `
		UPDATE dining_tables SET status = 'occupied', order_id = $2, updated_at = NOW()
		WHERE table_number = $1 AND status = 'unoccupied'`

	ReleaseTableSQL = `
		UPDATE dining_tables SET status = 'unoccupied', order_id = NULL, updated_at = NOW()
		WHERE table_number = $1 AND order_id IS NULL`

	ReleaseTableHeldBySQL = `
		UPDATE dining_tables SET status = 'unoccupied', order_id = NULL, updated_at = NOW()
		WHERE table_number = $1 AND order_id = $2`

	OccupyTableSQL = `
		UPDATE dining_tables SET status = 'occupied', updated_at = NOW()
		WHERE table_number = $1`

	GetTableSQL = `
		SELECT table_number, status, order_id
		FROM dining_tables WHERE table_number = $1`

	ListTablesSQL = `
		SELECT table_number, status, order_id
		FROM dining_tables
		WHERE table_number <= $1
		ORDER BY table_number ASC`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, order_number, transaction_number, customer_id, cashier_name, status,
			table_number, dine_in_or_takeout, total_price, total_discount, discount_eligible, discount_applied)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, position, menu_item_id, name, quantity, price, discounted_price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	GetOrderSQL = `
		SELECT id, order_number, transaction_number, customer_id, cashier_name, status, table_number,
			dine_in_or_takeout, total_price, total_discount, discount_eligible, discount_applied,
			created_at, updated_at
		FROM orders WHERE id = $1`

	GetOrderForUpdateSQL = GetOrderSQL + ` FOR UPDATE`

	GetOrderItemsSQL = `
		SELECT menu_item_id, name, quantity, price, discounted_price, image_url
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC`

	ListOrdersSQL = `
		SELECT id, order_number, transaction_number, customer_id, cashier_name, status, table_number,
			dine_in_or_takeout, total_price, total_discount, discount_eligible, discount_applied,
			created_at, updated_at
		FROM orders
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1::text[])
		ORDER BY order_number DESC
		LIMIT $2`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	UpdateOrderPricingSQL = `
		UPDATE orders SET total_price = $2, total_discount = $3, discount_eligible = $4,
			discount_applied = $5, updated_at = NOW()
		WHERE id = $1`

	UpdateOrderItemPriceSQL = `
		UPDATE order_items SET discounted_price = $3
		WHERE order_id = $1 AND position = $2`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`
)

// Cart queries
const (
	GetCartSQL = `
		SELECT id, customer_id FROM carts WHERE customer_id = $1`

	GetCartItemsSQL = `
		SELECT ci.menu_item_id, m.name, ci.quantity, ci.price, ci.image_url
		FROM cart_items ci
		JOIN menu_items m ON m.id = ci.menu_item_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC, m.name ASC`

	UpsertCartSQL = `
		INSERT INTO carts (id, customer_id)
		VALUES ($1, $2)
		ON CONFLICT (customer_id) DO UPDATE SET updated_at = NOW()
		RETURNING id`

	UpsertCartItemSQL = `
		INSERT INTO cart_items (cart_id, menu_item_id, quantity, price, image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, menu_item_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	DeleteCartItemSQL = `
		DELETE FROM cart_items WHERE cart_id = $1 AND menu_item_id = $2`

	ClearCartSQL = `
		DELETE FROM cart_items WHERE cart_id = $1`
)

// Notification queries
const (
	InsertNotificationSQL = `
		INSERT INTO notifications (id, customer_id, order_id, order_number, status, title, message, severity, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	ListNotificationsSQL = `
		SELECT id, customer_id, order_id, order_number, status, title, message, severity, read, created_at
		FROM notifications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	MarkNotificationReadSQL = `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND customer_id = $2`
)
