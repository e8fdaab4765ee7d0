package postgrest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/khmer-content/internal/store"
)

func encodeQuery(params url.Values, q store.Query) error {
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	}
	if err := encodeFilters(params, q.Filters); err != nil {
		return err
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return nil
}

// encodeFilters renders filters as PostgREST horizontal filters:
// col=eq.v, col=neq.v, col=in.(a,b).
func encodeFilters(params url.Values, filters []store.Filter) error {
	for _, f := range filters {
		if f.Column == "" {
			return fmt.Errorf("filter without column")
		}
		switch f.Op {
		case store.OpEq, store.OpNeq:
			params.Add(f.Column, string(f.Op)+"."+formatValue(f.Value))
		case store.OpIn:
			values, ok := f.Value.([]any)
			if !ok {
				return fmt.Errorf("filter %s: in expects a list, got %T", f.Column, f.Value)
			}
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = quoteListItem(formatValue(v))
			}
			params.Add(f.Column, "in.("+strings.Join(parts, ",")+")")
		default:
			return fmt.Errorf("filter %s: unsupported operator %q", f.Column, f.Op)
		}
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

// quoteListItem double-quotes items that contain list delimiters.
func quoteListItem(s string) string {
	if !strings.ContainsAny(s, ",()\"\\ ") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
