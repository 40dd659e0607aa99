package common

import (
	"bytes"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// IsValidIdentifier reports whether name is safe to use as a table or column name.
func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ValidatePlan checks every identifier of an insert plan.
func ValidatePlan(plan types.InsertPlan) error {
	if !IsValidIdentifier(plan.Table.Name) {
		return fmt.Errorf("invalid table name: %s", plan.Table.Name)
	}
	if plan.Table.Schema != "" && !IsValidIdentifier(plan.Table.Schema) {
		return fmt.Errorf("invalid schema name: %s", plan.Table.Schema)
	}
	for _, col := range plan.Columns {
		if !IsValidIdentifier(col.Name) {
			return fmt.Errorf("invalid column name: %s", col.Name)
		}
	}
	for _, col := range plan.Output {
		if !IsValidIdentifier(col) {
			return fmt.Errorf("invalid output column: %s", col)
		}
	}
	return nil
}

// QuoteWith wraps an identifier in the given quote character, doubling any
// embedded quotes.
func QuoteWith(q, name string) string {
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// QuoteAll quotes each name with quote.
func QuoteAll(quote func(string) string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quote(n)
	}
	return out
}

// ScanRows reads every row into a column-name keyed map. []byte values are
// copied and kept as bytes so BLOB keys compare equal when borrowed.
func ScanRows(rows *sql.Rows) ([]types.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []types.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(types.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = bytes.Clone(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// ParseSize extracts the first size argument of a declared type such as
// VARCHAR(40) or DECIMAL(10,2). It returns 0 when none is present.
func ParseSize(declared string) int {
	open := strings.Index(declared, "(")
	if open < 0 {
		return 0
	}
	rest := declared[open+1:]
	end := strings.IndexAny(rest, ",)")
	if end < 0 {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(rest[:end]), "%d", &n); err != nil {
		return 0
	}
	return n
}
