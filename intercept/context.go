// Package intercept implements the execution pipeline around every
// statement: the per-statement context carried through it, the ordered
// interceptor chain, and the built-in logging and caching interceptors.
package intercept

import (
	"time"

	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/security"
	"github.com/syssam/mappa/value"
	"github.com/syssam/mappa/wrapper"
)

// Operation classifies the statement being executed.
type Operation uint8

const (
	OpSelect Operation = iota
	OpInsert
	OpUpdate
	OpDelete
	OpCount
	OpExec
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpSelect:
		return "select"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpCount:
		return "count"
	case OpExec:
		return "exec"
	}
	return "unknown"
}

// Mutates reports whether the operation changes data.
func (o Operation) Mutates() bool {
	switch o {
	case OpInsert, OpUpdate, OpDelete, OpExec:
		return true
	}
	return false
}

// Type classifies an interceptor by concern. Custom interceptors use
// their own string.
type Type string

// Built-in interceptor types.
const (
	TypeTenant         Type = "tenant"
	TypePagination     Type = "pagination"
	TypeDataPermission Type = "data_permission"
	TypeFieldFill      Type = "field_fill"
	TypePerformance    Type = "performance"
	TypeCache          Type = "cache"
	TypeEncryption     Type = "encryption"
	TypeAudit          Type = "audit"
	TypeSoftDelete     Type = "soft_delete"
	TypeOptimisticLock Type = "optimistic_lock"
	TypeVersionControl Type = "version_control"
	TypeMetrics        Type = "metrics"
	TypeTracing        Type = "tracing"
	TypeLogging        Type = "logging"
)

// Metrics aggregates the timings of one statement.
type Metrics struct {
	ParseTime    time.Duration // building and rendering the statement
	ExecuteTime  time.Duration // time spent in the driver
	TotalTime    time.Duration // end to end, including interceptors
	RowsAffected int64
	MemoryBytes  int64 // rough estimate of the materialized result set
}

// ExecContext travels through the interceptor chain with one statement.
// Interceptors may rewrite SQL and Args; the original form stays
// available for auditing.
type ExecContext struct {
	Op           Operation
	Table        meta.TableName
	Wrapper      *wrapper.Wrapper // nil for raw statements
	OriginalSQL  string
	OriginalArgs []value.Value
	SQL          string
	Args         []value.Value
	Start        time.Time
	ConnectionID int64
	Metadata     map[string]value.Value
	Detection    *security.Result
	Metrics      Metrics

	// Result carries rows produced before the driver runs, e.g. a
	// cache hit. The executor skips the driver when it is set.
	Result    *value.Rows
	FromCache bool

	// WantsRows forces the statement through the query path even for a
	// mutating operation, e.g. INSERT ... RETURNING.
	WantsRows bool

	executed []string
	stopped  bool
	skip     map[string]struct{}
}

// NewExecContext returns a context for one statement, freezing the
// original SQL and parameters.
func NewExecContext(op Operation, table meta.TableName, sql string, args []value.Value) *ExecContext {
	return &ExecContext{
		Op:           op,
		Table:        table,
		OriginalSQL:  sql,
		OriginalArgs: append([]value.Value(nil), args...),
		SQL:          sql,
		Args:         args,
		Start:        time.Now(),
		Metadata:     make(map[string]value.Value),
	}
}

// DriverArgs returns the current parameters as driver arguments.
func (ec *ExecContext) DriverArgs() []any {
	out := make([]any, len(ec.Args))
	for i, a := range ec.Args {
		out[i] = a.Arg()
	}
	return out
}

// StopPropagation prevents later interceptors in the current phase from
// running.
func (ec *ExecContext) StopPropagation() { ec.stopped = true }

// Stopped reports whether propagation was stopped.
func (ec *ExecContext) Stopped() bool { return ec.stopped }

// SkipNext excludes the named interceptors from the rest of the
// pipeline.
func (ec *ExecContext) SkipNext(names ...string) {
	if ec.skip == nil {
		ec.skip = make(map[string]struct{}, len(names))
	}
	for _, n := range names {
		ec.skip[n] = struct{}{}
	}
}

// Skips reports whether the named interceptor was excluded.
func (ec *ExecContext) Skips(name string) bool {
	_, ok := ec.skip[name]
	return ok
}

// Executed returns the names of interceptors that ran, in order.
func (ec *ExecContext) Executed() []string { return ec.executed }

func (ec *ExecContext) recordExecuted(name string) {
	ec.executed = append(ec.executed, name)
}

// ranBefore reports whether the named interceptor's Before hook ran.
func (ec *ExecContext) ranBefore(name string) bool {
	for _, n := range ec.executed {
		if n == name {
			return true
		}
	}
	return false
}
