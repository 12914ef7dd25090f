package store

// SQL query constants organized by entity.
// All Postgres SQL lives here; PostgresStore methods reference these constants.

// Target queries.
const (
	queryUpsertTarget = `
		INSERT INTO targets (id, name, brand, gtin, mpn, reference_price, enabled, created_at, updated_at)
		VALUES (@id, @name, @brand, @gtin, @mpn, @reference_price, @enabled, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			gtin = EXCLUDED.gtin,
			mpn = EXCLUDED.mpn,
			reference_price = EXCLUDED.reference_price,
			enabled = EXCLUDED.enabled,
			updated_at = now()
		RETURNING created_at, updated_at`

	queryGetTarget = `
		SELECT id, name, brand, gtin, mpn, reference_price, enabled, created_at, updated_at
		FROM targets
		WHERE id = $1`

	queryListTargets = `
		SELECT id, name, brand, gtin, mpn, reference_price, enabled, created_at, updated_at
		FROM targets
		ORDER BY id`

	queryListEnabledTargets = `
		SELECT id, name, brand, gtin, mpn, reference_price, enabled, created_at, updated_at
		FROM targets
		WHERE enabled = true
		ORDER BY id`

	queryDeleteTarget = `DELETE FROM targets WHERE id = $1`
)

// Result queries.
const (
	queryInsertResult = `
		INSERT INTO results (
			run_id, target_id, target_name, brand, gtin, mpn, reference_price,
			scope_id, status, matched_by, match_source, match_url, match_title, match_price,
			origin, price_diff, error_text, checked_at
		) VALUES (
			@run_id, @target_id, @target_name, @brand, @gtin, @mpn, @reference_price,
			@scope_id, @status, @matched_by, @match_source, @match_url, @match_title, @match_price,
			@origin, @price_diff, @error_text, @checked_at
		)`

	queryPruneResults = `DELETE FROM results WHERE checked_at < $1`
)

// Run queries.
const (
	queryCreateRun = `
		INSERT INTO runs (trigger, status, started_at, targets)
		VALUES ($1, $2, now(), $3)
		RETURNING id, started_at`

	queryCompleteRun = `
		UPDATE runs SET
			status = $2,
			completed_at = now(),
			targets = $3,
			matched = $4,
			changes = $5,
			error_text = $6
		WHERE id = $1
		RETURNING completed_at`

	queryGetRun = `
		SELECT id, trigger, status, started_at, completed_at, targets, matched, changes, error_text
		FROM runs
		WHERE id = $1`

	queryListRuns = `
		SELECT id, trigger, status, started_at, completed_at, targets, matched, changes, error_text
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1`
)
