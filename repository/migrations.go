package repository

import (
	"context"
	"errors"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS pending_transactions (
		wallet_address TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		payload        BYTEA NOT NULL,
		status         TEXT NOT NULL,
		created_at     BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id             BIGSERIAL PRIMARY KEY,
		transaction_id TEXT NOT NULL UNIQUE,
		kind           TEXT NOT NULL,
		title          TEXT NOT NULL,
		company        TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		contact_email  TEXT NOT NULL DEFAULT '',
		website_url    TEXT NOT NULL DEFAULT '',
		wallet_address TEXT NOT NULL,
		status         TEXT NOT NULL,
		created_at     BIGINT NOT NULL,
		expires_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS listings_wallet_idx ON listings (wallet_address)`,
	`CREATE INDEX IF NOT EXISTS listings_content_idx ON listings (title, company, wallet_address)`,
	`CREATE OR REPLACE FUNCTION notify_listing_event() RETURNS TRIGGER AS $$
	BEGIN
		PERFORM pg_notify('events', json_build_object(
			'table', TG_TABLE_NAME,
			'action', TG_OP,
			'data', json_build_object(
				'id', NEW.id,
				'transaction_id', NEW.transaction_id,
				'wallet_address', NEW.wallet_address
			)
		)::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS listings_notify ON listings`,
	`CREATE TRIGGER listings_notify AFTER INSERT ON listings
		FOR EACH ROW EXECUTE PROCEDURE notify_listing_event()`,
}

// RunMigration creates the repository schema.
// The unique constraint on listings transaction_id is the primary defence
// against double materialization of a single payment.
func (db DataBase) RunMigration(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := db.inner.ExecContext(ctx, m); err != nil {
			return errors.Join(ErrMigrationFailed, err)
		}
	}
	return nil
}
