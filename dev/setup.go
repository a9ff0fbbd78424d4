package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "marketwatch-backend/dev/env"
	snapshotsdb "marketwatch-backend/internal/snapshots/db"
)

func createDb(filename, schema string) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(schema)
	return err
}

func CreateEmptyDBs() error {
	return createDb("snapshots.db", snapshotsdb.Schema)
}

const testConfigTemplate = `{
  // an account that has joined at least one game
  username: "",
  password: "",
  // the id in https://www.marketwatch.com/games/<game_id>
  game_id: "",
  // a ticker the game allows trading
  ticker: "AAPL",
}
`

// CreateTestConfig writes an empty config for the tests that run against
// the live site, they are skipped until it is filled in.
func CreateTestConfig() error {
	path, err := devenv.GetStateFilePath(devenv.MarketWatchTestConfigFile)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("test config already created at", path)
		return nil
	}
	fmt.Println("creating test config at", path)
	return os.WriteFile(path, []byte(testConfigTemplate), 0600)
}

func PrintConfigLocations() {
	slog.Info("the live marketwatch tests are skipped until dev/.state/marketwatch_test.json5 has credentials, run `go test -v ./internal/scrapers/marketwatch/...` to see which tests were skipped.")
}
