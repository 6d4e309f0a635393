package config

import (
	"fmt"

	"trinix-backend/store"
)

// ConnectStore opens the record store selected by STORE_DRIVER. The csv
// driver ignores DB_URL; the SQL drivers require it, except sqlite which
// falls back to a file under DATA_DIR.
func ConnectStore(settings Settings) (store.RecordStore, error) {
	switch settings.StoreDriver {
	case "postgres", "mysql":
		if settings.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required for the %s store", settings.StoreDriver)
		}
	}
	return store.Open(settings.StoreDriver, settings.DataDir, settings.DBURL)
}
