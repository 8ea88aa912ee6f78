package storage

import (
	_ "embed"
)

const (
	insertRunSQL = `
INSERT INTO runs (
                  run_uuid,
                  created_at,
                  log_path,
                  found,
                  unflagged,
                  reported,
                  truncated,
                  full_scan)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunColumns = `
SELECT 
    r.id, 
    r.run_uuid, 
    r.created_at, 
    r.log_path, 
    r.found, 
    r.unflagged, 
    r.reported, 
    r.truncated,
    r.full_scan,
    (SELECT COUNT(*) FROM selections s WHERE s.run_id = r.id)
FROM runs r`

	selectRunSQL = selectRunColumns + `
WHERE 
    r.id = ?`

	selectRunsSQL = selectRunColumns + `
ORDER BY r.created_at, r.id`

	insertSelectionSQL = `
INSERT INTO selections (
                        run_id,
                        scan,
                        field,
                        field_id,
                        time,
                        antenna1,
                        antenna2,
                        spw,
                        channel,
                        frequency,
                        correlation)
VALUES `

	insertSelectionPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	selectSelectionsSQL = `
SELECT 
    scan,
    field,
    field_id,
    time,
    antenna1,
    antenna2,
    spw,
    channel,
    frequency,
    correlation
FROM selections
WHERE 
    run_id = ?
ORDER BY id`

	selectAntennaTotalsSQL = `
SELECT 
    antenna, 
    COUNT(*) AS n
FROM (
    SELECT antenna1 AS antenna FROM selections WHERE antenna1 != ''
    UNION ALL
    SELECT antenna2 AS antenna FROM selections WHERE antenna2 != ''
)
GROUP BY antenna
ORDER BY n DESC, antenna
LIMIT ?`
)

//go:embed schema.sql
var initSchemaSQL string
