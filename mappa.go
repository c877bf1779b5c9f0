// Package mappa is a dialect-aware data mapper over database/sql. It
// renders parameterized statements for MySQL, PostgreSQL, SQLite,
// Oracle and SQL Server, runs them through an interceptor chain and a
// SQL security screen, and materializes results into typed entities.
package mappa

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/driver"
	"github.com/syssam/mappa/intercept"
	"github.com/syssam/mappa/security"
	"github.com/syssam/mappa/value"
)

// settings is the behavior shared by a mapper and its transactions.
type settings struct {
	batch  int
	strict bool
	logger *slog.Logger
}

// Executor runs statements: either a *Mapper on the pool or a *Tx on
// one transaction. All mapper operations accept it.
type Executor interface {
	dialect() dialect.Dialect
	settings() *settings
	execute(ctx context.Context, ec *intercept.ExecContext) (*value.Rows, driver.Result, error)
}

// Mapper is the entry point: one connection pool plus the interceptor
// chain, security policy and defaults applied to every statement. Safe
// for concurrent use.
type Mapper struct {
	drv      *driver.Driver
	d        dialect.Dialect
	chain    atomic.Pointer[intercept.Chain]
	detector *security.Detector
	policy   security.Policy
	set      settings
	flight   singleflight.Group
	caching  atomic.Bool
	connSeq  atomic.Int64
	closed   atomic.Bool
}

// Open connects according to cfg and returns a ready mapper.
func Open(cfg *Config) (*Mapper, error) {
	d, policy, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.dsn(d.Platform())
	if err != nil {
		return nil, err
	}
	drv, err := driver.Open(d, cfg.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	return newMapper(cfg, d, policy, drv), nil
}

// OpenDB wraps an existing pool, e.g. one shared with other components.
func OpenDB(cfg *Config, db *sql.DB) (*Mapper, error) {
	d, policy, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return newMapper(cfg, d, policy, driver.OpenDB(d, db)), nil
}

func newMapper(cfg *Config, d dialect.Dialect, policy security.Policy, drv *driver.Driver) *Mapper {
	db := drv.DB()
	if cfg.Pool.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime.Std())
	}
	if cfg.Pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime.Std())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()}))
	}
	m := &Mapper{
		drv:      drv,
		d:        drv.Dialect(),
		detector: security.NewDetector(),
		policy:   policy,
		set: settings{
			batch:  cfg.BatchSize,
			strict: cfg.Strict,
			logger: logger,
		},
	}
	chain := intercept.NewChain(intercept.NewLogging(logger, cfg.SlowQueryThreshold.Std()))
	m.chain.Store(chain)
	if cfg.Cache.Enabled {
		m.Use(intercept.NewCache(intercept.NewMemoryCache(), cfg.Cache.TTL.Std()))
	}
	return m
}

// Use appends interceptors. Executions already in flight keep the chain
// snapshot they started with.
func (m *Mapper) Use(its ...intercept.Interceptor) {
	for _, it := range its {
		if it.Type() == intercept.TypeCache {
			m.caching.Store(true)
		}
	}
	for {
		old := m.chain.Load()
		if m.chain.CompareAndSwap(old, old.With(its...)) {
			return
		}
	}
}

// Chain returns the current interceptor snapshot.
func (m *Mapper) Chain() *intercept.Chain { return m.chain.Load() }

// Driver returns the underlying driver.
func (m *Mapper) Driver() *driver.Driver { return m.drv }

// Ping verifies the database connection.
func (m *Mapper) Ping(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return m.drv.Ping(ctx)
}

// Close releases the pool. Further operations fail with ErrClosed.
func (m *Mapper) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return m.drv.Close()
}

func (m *Mapper) dialect() dialect.Dialect { return m.d }

func (m *Mapper) settings() *settings { return &m.set }

func (m *Mapper) execute(ctx context.Context, ec *intercept.ExecContext) (*value.Rows, driver.Result, error) {
	if m.closed.Load() {
		return nil, driver.Result{}, ErrClosed
	}
	// Concurrent identical cached selects collapse into one execution;
	// late arrivals get an independent copy of the shared result.
	if ec.Op == intercept.OpSelect && m.caching.Load() {
		v, err, shared := m.flight.Do(flightKey(ec), func() (any, error) {
			rows, _, err := m.run(ctx, m.drv.Conn, ec)
			if err != nil {
				return nil, err
			}
			return rows, nil
		})
		if err != nil {
			return nil, driver.Result{}, err
		}
		rows := v.(*value.Rows)
		if shared {
			if data, err := value.EncodeRows(rows); err == nil {
				if copied, err := value.DecodeRows(data); err == nil {
					rows = copied
				}
			}
		}
		return rows, driver.Result{}, nil
	}
	return m.run(ctx, m.drv.Conn, ec)
}

func flightKey(ec *intercept.ExecContext) string {
	key := ec.Table.Qualified() + ":" + ec.SQL
	for _, a := range ec.Args {
		key += "|" + a.String()
	}
	return key
}

// run drives one statement through the pipeline: interceptors, security
// screen, driver, metrics.
func (m *Mapper) run(ctx context.Context, conn driver.Conn, ec *intercept.ExecContext) (*value.Rows, driver.Result, error) {
	ec.ConnectionID = m.connSeq.Add(1)
	ec.Metrics.ParseTime = time.Since(ec.Start)
	chain := m.chain.Load()
	if err := chain.Before(ctx, ec); err != nil {
		return nil, driver.Result{}, err
	}
	if err := m.screen(ctx, ec); err != nil {
		return nil, driver.Result{}, err
	}
	var (
		rows *value.Rows
		res  driver.Result
	)
	if ec.Result != nil {
		rows = ec.Result
	} else {
		start := time.Now()
		var err error
		switch {
		case ec.Op == intercept.OpSelect || ec.Op == intercept.OpCount || ec.WantsRows:
			rows, err = conn.Query(ctx, ec.SQL, ec.DriverArgs()...)
			ec.Result = rows
		default:
			res, err = conn.Exec(ctx, ec.SQL, ec.DriverArgs()...)
		}
		ec.Metrics.ExecuteTime = time.Since(start)
		if err != nil {
			chain.OnError(ctx, ec, err)
			return nil, driver.Result{}, err
		}
	}
	if rows != nil {
		ec.Metrics.RowsAffected = int64(rows.Len())
		ec.Metrics.MemoryBytes = estimateBytes(rows)
	} else {
		ec.Metrics.RowsAffected = res.Affected
	}
	if err := chain.After(ctx, ec); err != nil {
		return nil, driver.Result{}, err
	}
	ec.Metrics.TotalTime = time.Since(ec.Start)
	return rows, res, nil
}

// screen runs the injection detector on the final statement text, after
// interceptors had their chance to rewrite it.
func (m *Mapper) screen(ctx context.Context, ec *intercept.ExecContext) error {
	if m.policy == security.PolicyOff {
		return nil
	}
	res := m.detector.Inspect(ec.SQL)
	ec.Detection = &res
	if !res.Dangerous {
		return nil
	}
	if m.policy == security.PolicyDeny {
		return &InjectionError{SQL: ec.SQL, Reasons: res.Reasons}
	}
	m.set.logger.WarnContext(ctx, "sql security findings",
		"reasons", res.Reasons,
		"query", ec.SQL,
	)
	return nil
}

func estimateBytes(rs *value.Rows) int64 {
	var n int64
	for _, r := range rs.All() {
		for i := 0; i < r.Len(); i++ {
			v, _ := r.ValueAt(i)
			n += 16
			if s, ok := v.AsString(); ok {
				n += int64(len(s))
			} else if b, ok := v.AsBytes(); ok {
				n += int64(len(b))
			}
		}
	}
	return n
}

var _ Executor = (*Mapper)(nil)
