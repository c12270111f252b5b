package frame

// Cache payload layout: {"columns": [...], "rows": [[...], ...]}. Column
// order is carried explicitly because JSON objects would lose it.

// Encode renders a full frame as a JSON-safe cache payload.
func Encode(f *Frame) map[string]any {
	columns := make([]any, len(f.names))
	for i, name := range f.names {
		columns[i] = name
	}
	rows := make([]any, f.Len())
	for r := range rows {
		row := make([]any, len(f.names))
		for c := range f.names {
			row[c] = f.Value(r, c)
		}
		rows[r] = row
	}
	return map[string]any{"columns": columns, "rows": rows}
}

// Decode coerces a cached payload back into a frame. It reports false for
// anything not structurally shaped like an Encode result, so callers can
// treat stale or foreign cache content as a miss.
func Decode(v any) (*Frame, bool) {
	payload, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}

	rawColumns, ok := payload["columns"].([]any)
	if !ok {
		return nil, false
	}
	names := make([]string, len(rawColumns))
	for i, c := range rawColumns {
		name, ok := c.(string)
		if !ok {
			return nil, false
		}
		names[i] = name
	}

	rawRows, ok := payload["rows"].([]any)
	if !ok {
		return nil, false
	}
	rows := make([][]any, len(rawRows))
	for i, r := range rawRows {
		row, ok := r.([]any)
		if !ok {
			return nil, false
		}
		rows[i] = row
	}

	return New(names, rows), true
}
