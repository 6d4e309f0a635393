package store

import (
	"log"
	"strconv"

	"trinix-backend/analytics"
)

// Visits schema history. Each version adds one column; the migration for a
// version backfills that column using the same rule as creation time.
//
//	v1  visit_id..snacks_amount, referrals
//	v2  + snacks_details
//	v3  + points
const CurrentVisitSchema = 3

type visitMigration struct {
	version int
	column  string
	apply   func(rows []visitRow)
}

var visitMigrations = []visitMigration{
	{
		version: 2,
		column:  "snacks_details",
		apply: func(rows []visitRow) {
			for i := range rows {
				rows[i].SnacksDetails = ""
			}
		},
	},
	{
		version: 3,
		column:  "points",
		apply: func(rows []visitRow) {
			for i := range rows {
				rows[i].Points = strconv.Itoa(analytics.PointsFromText(cleanText(rows[i].PaymentAmount)))
			}
		},
	},
}

// visitSchemaVersion reports the highest version whose column, and every
// earlier one, is present in header.
func visitSchemaVersion(header []string) int {
	cols := columnSet(header)
	version := 1
	for _, m := range visitMigrations {
		if !cols[m.column] {
			break
		}
		version = m.version
	}
	return version
}

// migrateVisits backfills every column missing from header and reports
// whether anything changed. Columns are checked individually so a file that
// skipped a version keeps the data it does have.
func migrateVisits(header []string, rows []visitRow) bool {
	cols := columnSet(header)
	migrated := false
	for _, m := range visitMigrations {
		if cols[m.column] {
			continue
		}
		log.Printf("[STORE] migrating visits to schema v%d: backfilling %s for %d rows", m.version, m.column, len(rows))
		m.apply(rows)
		migrated = true
	}
	return migrated
}

func columnSet(header []string) map[string]bool {
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[h] = true
	}
	return cols
}
