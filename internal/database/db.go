package database

import (
    "context"
    "database/sql"
    "net"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/jmoiron/sqlx"
)

// Options carries the connection settings taken from config.Config.
type Options struct {
    User string
    Pass string
    Host string
    Port string
    Name string
}

// DSN renders the driver connection string.  Timestamps are parsed into
// time.Time and kept in UTC; the driver's default collation is utf8mb4.
func (o Options) DSN() string {
    c := mysql.NewConfig()
    c.User = o.User
    c.Passwd = o.Pass
    c.Net = "tcp"
    c.Addr = net.JoinHostPort(o.Host, o.Port)
    c.DBName = o.Name
    c.ParseTime = true
    c.Loc = time.UTC
    return c.FormatDSN()
}

// Open connects to MySQL, verifies the connection and wraps the pool for
// sqlx.  The embedded *sql.DB is used directly by the locking write paths.
func Open(ctx context.Context, o Options) (*sqlx.DB, error) {
    return OpenDSN(ctx, o.DSN())
}

// OpenDSN is Open for a ready-made DSN (integration tests use it).
func OpenDSN(ctx context.Context, dsn string) (*sqlx.DB, error) {
    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }

    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := db.PingContext(pingCtx); err != nil {
        _ = db.Close()
        return nil, err
    }
    return sqlx.NewDb(db, "mysql"), nil
}
