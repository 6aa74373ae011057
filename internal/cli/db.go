package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/me/dagsim/internal/store"
)

// openStore opens (creating if needed) the results database and runs
// migrations. An empty path resolves to ~/.dagsim/dagsim.db.
func openStore(dbPath string) (*store.SQLiteStore, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir := filepath.Join(home, ".dagsim")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", dir, err)
		}
		dbPath = filepath.Join(dir, "dagsim.db")
	}

	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return st, nil
}
