package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-000000",
		Description: "Initial schema",
		Up: []string{
			// Users - mirror of the identity provider's user records.
			// id is the provider's user ID; rows are created by identity webhooks.
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				stripe_customer_id TEXT UNIQUE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_stripe_customer_id ON users(stripe_customer_id)`,

			// Products - mirror of the Stripe product catalog.
			// Never deleted; deactivated via active=0.
			`CREATE TABLE IF NOT EXISTS products (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT,
				active INTEGER NOT NULL DEFAULT 1,
				metadata TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,

			// Prices - purchasable variants of a product.
			// interval is only meaningful when type = 'recurring'.
			`CREATE TABLE IF NOT EXISTS prices (
				id TEXT PRIMARY KEY,
				product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				active INTEGER NOT NULL DEFAULT 1,
				currency TEXT NOT NULL,
				unit_amount INTEGER,
				interval TEXT,
				interval_count INTEGER,
				trial_period_days INTEGER,
				type TEXT NOT NULL,
				metadata TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_product_id ON prices(product_id)`,

			// Subscriptions - a user's relationship to a price over time.
			// Status transitions are driven entirely by Stripe webhook events.
			`CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				status TEXT NOT NULL,
				price_id TEXT REFERENCES prices(id),
				quantity INTEGER NOT NULL DEFAULT 1,
				cancel_at_period_end INTEGER NOT NULL DEFAULT 0,
				current_period_start TEXT NOT NULL,
				current_period_end TEXT NOT NULL,
				canceled_at TEXT,
				trial_start TEXT,
				trial_end TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status)`,

			// AI usage ledger - one row per answered chat request, immutable.
			// usage_date is a plain YYYY-MM-DD date for month-prefix filtering.
			`CREATE TABLE IF NOT EXISTS ai_usage (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				model TEXT NOT NULL,
				prompt_tokens INTEGER NOT NULL DEFAULT 0,
				completion_tokens INTEGER NOT NULL DEFAULT 0,
				total_tokens INTEGER NOT NULL DEFAULT 0,
				usage_date TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_ai_usage_user_date ON ai_usage(user_id, usage_date)`,
		},
	})
}
