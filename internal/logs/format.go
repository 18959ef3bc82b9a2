package logs

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var headerKeys = []string{"ts", "level", "msg", "source", "component"}

// Format renders one JSON run log record as
// "ts LEVEL [component] msg key=value ...", with the remaining keys sorted.
// Lines that are not JSON objects are returned unchanged.
func Format(line string) string {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil || record == nil {
		return line
	}

	var b strings.Builder
	if ts, ok := record["ts"].(string); ok {
		b.WriteString(ts)
		b.WriteByte(' ')
	}
	level, _ := record["level"].(string)
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(lo.Ternary(level == "", "info", level)))
	if component, ok := record["component"].(string); ok && component != "" {
		fmt.Fprintf(&b, "[%s] ", component)
	}
	msg, _ := record["msg"].(string)
	b.WriteString(msg)

	keys := lo.Filter(lo.Keys(record), func(k string, _ int) bool {
		return !slices.Contains(headerKeys, k)
	})
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, formatValue(record[key]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch value := v.(type) {
	case string:
		if strings.ContainsAny(value, " \t") {
			return fmt.Sprintf("%q", value)
		}
		return value
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(data)
	}
}
