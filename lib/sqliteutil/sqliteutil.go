package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	devenv "marketwatch-backend/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config points at either a local sqlite file or a remote libsql database,
// Url wins if both are given.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the database described by config and applies schema to it,
// schema statements should use "if not exists".
func OpenDB(schema string, config Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch {
	case config.Url != "":
		db, err = openLibsql(config)
	case config.File != "":
		db, err = openFile(config.File)
	default:
		return nil, wrapOpenDB(fmt.Errorf("neither a file nor a url was specified"))
	}
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(fmt.Errorf("apply schema: %w", err))
	}
	return db, nil
}

func openLibsql(config Config) (*sql.DB, error) {
	dbUrl, err := url.Parse(config.Url)
	if err != nil {
		return nil, err
	}
	if config.AuthToken != "" {
		query := dbUrl.Query()
		query.Set("authToken", config.AuthToken)
		dbUrl.RawQuery = query.Encode()
	}
	return sql.Open("libsql", dbUrl.String())
}

func openFile(file string) (*sql.DB, error) {
	path := file
	if path != ":memory:" {
		var err error
		path, err = devenv.ResolvePath(file)
		if err != nil {
			return nil, err
		}
		err = os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// sqlite only supports one writer at a time, WAL lets readers proceed
	// while it writes
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
