// Package dbtest provides a database/sql driver that records transaction
// boundaries.  It supports BeginTx, Commit and Rollback only; any
// statement fails.  Tests use it to assert how code scopes its
// transactions without a live MySQL server.
package dbtest

import (
    "context"
    "database/sql"
    "database/sql/driver"
    "errors"
    "fmt"
    "sync"
    "testing"
)

const driverName = "dbtest"

var (
    registerOnce sync.Once
    registryMu   sync.Mutex
    registry     = map[string]*Recorder{}
    seq          int
)

// ErrStatement is returned for any query or exec issued on the fake.
var ErrStatement = errors.New("dbtest: statements are not supported")

// Recorder counts transaction events.
type Recorder struct {
    mu         sync.Mutex
    begins     int
    commits    int
    rollbacks  int
    isolation  sql.IsolationLevel
    FailBegin  error
    FailCommit error
}

// Counts returns begins, commits and rollbacks so far.
func (r *Recorder) Counts() (begins, commits, rollbacks int) {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.begins, r.commits, r.rollbacks
}

// Isolation is the isolation level requested by the last BeginTx.
func (r *Recorder) Isolation() sql.IsolationLevel {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.isolation
}

// Open returns a pool backed by a fresh Recorder.  The pool is closed
// when the test ends.
func Open(t testing.TB) (*sql.DB, *Recorder) {
    t.Helper()
    registerOnce.Do(func() { sql.Register(driverName, drv{}) })

    rec := &Recorder{}
    registryMu.Lock()
    seq++
    name := fmt.Sprintf("recorder-%d", seq)
    registry[name] = rec
    registryMu.Unlock()

    db, err := sql.Open(driverName, name)
    if err != nil {
        t.Fatalf("dbtest: open: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })
    return db, rec
}

type drv struct{}

func (drv) Open(name string) (driver.Conn, error) {
    registryMu.Lock()
    rec := registry[name]
    registryMu.Unlock()
    if rec == nil {
        return nil, fmt.Errorf("dbtest: unknown recorder %q", name)
    }
    return &conn{rec: rec}, nil
}

type conn struct{ rec *Recorder }

func (c *conn) Prepare(string) (driver.Stmt, error) { return nil, ErrStatement }
func (c *conn) Close() error                        { return nil }
func (c *conn) Begin() (driver.Tx, error) {
    return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *conn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
    c.rec.mu.Lock()
    defer c.rec.mu.Unlock()
    if c.rec.FailBegin != nil {
        return nil, c.rec.FailBegin
    }
    c.rec.begins++
    c.rec.isolation = sql.IsolationLevel(opts.Isolation)
    return &tx{rec: c.rec}, nil
}

type tx struct{ rec *Recorder }

func (t *tx) Commit() error {
    t.rec.mu.Lock()
    defer t.rec.mu.Unlock()
    if t.rec.FailCommit != nil {
        return t.rec.FailCommit
    }
    t.rec.commits++
    return nil
}

func (t *tx) Rollback() error {
    t.rec.mu.Lock()
    defer t.rec.mu.Unlock()
    t.rec.rollbacks++
    return nil
}
