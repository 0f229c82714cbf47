package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Product queries.
const (
	queryUpsertProduct = `
		INSERT INTO products (
			url, name, retailer, in_stock, price, category, set_name, image_url, last_checked
		) VALUES (
			@url, @name, @retailer, @in_stock, @price, @category, @set_name, @image_url, @last_checked
		)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			retailer = EXCLUDED.retailer,
			in_stock = EXCLUDED.in_stock,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			set_name = EXCLUDED.set_name,
			image_url = EXCLUDED.image_url,
			last_checked = EXCLUDED.last_checked`

	queryGetProduct = `
		SELECT url, name, retailer, in_stock, price, category, set_name, image_url, last_checked
		FROM products
		WHERE url = $1`

	queryCountProducts = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE in_stock)
		FROM products`
)

// Stock history queries.
const (
	queryAppendHistory = `
		INSERT INTO stock_history (product_url, retailer, in_stock, price, recorded_at)
		VALUES (@product_url, @retailer, @in_stock, @price, @recorded_at)`

	queryDeleteHistoryBefore = `
		DELETE FROM stock_history WHERE recorded_at < $1`
)

// Alert queries.
const (
	queryInsertAlert = `
		INSERT INTO alerts (product_url, alert_type, old_price, new_price, created_at)
		VALUES (@product_url, @alert_type, @old_price, @new_price, @created_at)`

	queryWasRecentlyAlerted = `
		SELECT EXISTS(
			SELECT 1 FROM alerts
			WHERE product_url = $1 AND created_at >= $2
		)`

	queryCountRecentAlerts = `
		SELECT COUNT(*) FROM alerts WHERE created_at > $1`
)

// Dead-letter queue queries.
const (
	queryInsertFailedDelivery = `
		INSERT INTO failed_deliveries (product_url, alert_type, error_message, created_at)
		VALUES (@product_url, @alert_type, @error_message, @created_at)
		RETURNING id`

	queryListRetryable = `
		SELECT id, product_url, alert_type, error_message, retry_count, last_retry_at, resolved, created_at
		FROM failed_deliveries
		WHERE NOT resolved
		  AND retry_count < $1
		  AND (last_retry_at IS NULL OR last_retry_at < $2)
		ORDER BY created_at ASC`

	queryListFailedDeliveries = `
		SELECT id, product_url, alert_type, error_message, retry_count, last_retry_at, resolved, created_at
		FROM failed_deliveries
		WHERE NOT resolved
		ORDER BY created_at DESC
		LIMIT $1`

	queryIncrementRetry = `
		UPDATE failed_deliveries
		SET retry_count = retry_count + 1, last_retry_at = now()
		WHERE id = $1`

	queryResolveFailedDelivery = `
		UPDATE failed_deliveries SET resolved = TRUE WHERE id = $1`

	queryDLQStats = `
		SELECT
			COUNT(*) FILTER (WHERE NOT resolved),
			COUNT(*) FILTER (WHERE resolved),
			COUNT(*) FILTER (WHERE NOT resolved AND retry_count >= $1)
		FROM failed_deliveries`

	queryDeleteResolvedBefore = `
		DELETE FROM failed_deliveries WHERE resolved AND created_at < $1`
)

// Tracked product queries.
const (
	queryAddTracked = `
		INSERT INTO tracked_products (url, name, retailer, added_by, added_at)
		VALUES (@url, @name, @retailer, @added_by, @added_at)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			retailer = EXCLUDED.retailer,
			added_by = EXCLUDED.added_by`

	queryListTracked = `
		SELECT url, name, retailer, added_by, added_at
		FROM tracked_products
		ORDER BY added_at DESC`

	queryRemoveTracked = `
		DELETE FROM tracked_products WHERE url = $1`
)
