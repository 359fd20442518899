package weather

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderLiteral renders v as a SQL literal for col.
//
// String columns and null values are wrapped in single quotes; everything else
// is emitted bare. A null is spelled 'null', the JSON token the provider sent.
// Values are not escaped: a quote inside a string value breaks the statement.
// Execution always goes through bound parameters.
func RenderLiteral(col Column, v any) string {
	if col.Kind == KindString || v == nil {
		return "'" + formatValue(v) + "'"
	}
	return formatValue(v)
}

// RenderValues joins the literals for every column of obs in declared order.
func RenderValues(obs Observation) string {
	vals := obs.Values()
	parts := make([]string, len(Columns))
	for i, col := range Columns {
		parts[i] = RenderLiteral(col, vals[i])
	}
	return strings.Join(parts, ",")
}

// InsertStatement is the literal form of the positional insert for obs.
func InsertStatement(obs Observation) string {
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", TableName, RenderValues(obs))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
