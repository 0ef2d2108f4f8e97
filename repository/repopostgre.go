package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

var (
	ErrInsertFailed       = fmt.Errorf("insert failed")
	ErrRemoveFailed       = fmt.Errorf("remove failed")
	ErrSelectFailed       = fmt.Errorf("select failed")
	ErrUpdateFailed       = fmt.Errorf("update failed")
	ErrScanFailed         = fmt.Errorf("scan failed")
	ErrMarshalFailed      = fmt.Errorf("marshal failed")
	ErrUnmarshalFailed    = fmt.Errorf("unmarshal failed")
	ErrCommitFailed       = fmt.Errorf("transaction commit failed")
	ErrTrxBeginFailed     = fmt.Errorf("transaction begin failed")
	ErrListenFailed       = fmt.Errorf("listen failed")
	ErrListingExists      = fmt.Errorf("listing with given transaction id exists")
	ErrMigrationFailed    = fmt.Errorf("migration failed")
	ErrPendingNotFound    = fmt.Errorf("pending transaction not found")
)

// DBConfig contains configuration for the database.
type DBConfig struct {
	ConnStr      string `yaml:"conn_str"`      // ConnStr is the connection string to the database.
	DatabaseName string `yaml:"database_name"` // DatabaseName is the name of the database.
	IsSSL        bool   `yaml:"is_ssl"`        // IsSSL indicates if the connection should be encrypted.
}

// DataBase provides database access for read, write and delete of repository entities.
type DataBase struct {
	inner *sql.DB
}

// Connect creates new connection to the repository and returns pointer to the DataBase.
func Connect(ctx context.Context, cfg DBConfig) (*DataBase, error) {
	sslMode := "sslmode=disable"
	if cfg.IsSSL {
		sslMode = "sslmode=require"
	}
	db, err := sql.Open("postgres", fmt.Sprintf("%s/%s?%s", cfg.ConnStr, cfg.DatabaseName, sslMode))
	if err != nil {
		return nil, err
	}

	return &DataBase{inner: db}, nil
}

// Subscribe subscribes to the database listing events.
func Subscribe(ctx context.Context, cfg DBConfig) (Listener, error) {
	f := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			panic(err)
		}
	}
	listener, err := Listen(cfg.ConnStr, f)
	if err != nil {
		return Listener{}, err
	}
	return listener, nil
}

// Disconnect disconnects user from database.
func (db DataBase) Disconnect(ctx context.Context) error {
	return db.inner.Close()
}

// Ping checks if the connection to the database is still alive.
func (db DataBase) Ping(ctx context.Context) error {
	return db.inner.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
