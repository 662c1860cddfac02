package sqlgen

import (
	"fmt"
	"strings"
)

// LimitStyle says where a row limit is rendered.
type LimitStyle int

const (
	LimitClause LimitStyle = iota // trailing LIMIT n
	LimitTop                      // SELECT TOP (n)
)

// Dialect captures the syntax differences between target databases.
type Dialect interface {
	Name() string
	QuoteIdentifier(ident string) string
	// Placeholder returns the placeholder text for a binding name.
	Placeholder(name string) string
	// NamedParameters reports whether placeholders are bound by name. When
	// true a repeated parameter is bound once.
	NamedParameters() bool
	Limit() LimitStyle
}

// SQLite renders `?` placeholders and double-quoted identifiers.
var SQLite Dialect = sqliteDialect{}

// SQLServer renders `@name` placeholders and bracketed identifiers.
var SQLServer Dialect = sqlServerDialect{}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteIdentifier(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (sqliteDialect) Placeholder(string) string { return "?" }
func (sqliteDialect) NamedParameters() bool     { return false }
func (sqliteDialect) Limit() LimitStyle         { return LimitClause }

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) QuoteIdentifier(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (sqlServerDialect) Placeholder(name string) string { return "@" + name }
func (sqlServerDialect) NamedParameters() bool          { return true }
func (sqlServerDialect) Limit() LimitStyle              { return LimitTop }

// ParseDialect looks a dialect up by name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (expected sqlite or sqlserver)", name)
	}
}
