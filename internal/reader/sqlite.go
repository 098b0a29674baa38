package reader

import (
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go sqlite driver.
	_ "modernc.org/sqlite"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

type sqliteOptions struct {
	Table string `mapstructure:"table"`
	Query string `mapstructure:"query"`
}

func readSQLite(path string, kwargs map[string]any) (*frame.Dataset, error) {
	var opts sqliteOptions
	if err := decodeKwargs(kwargs, &opts); err != nil {
		return nil, err
	}
	query := opts.Query
	switch {
	case query != "" && opts.Table != "":
		return nil, fmt.Errorf("sqlite reader takes table or query, not both")
	case query == "" && opts.Table == "":
		return nil, fmt.Errorf("sqlite reader requires table or query")
	case query == "":
		query = fmt.Sprintf("SELECT * FROM %q", opts.Table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, readError(path, err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, readError(path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, readError(path, err)
	}
	t := frame.NewTable(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, readError(path, err)
		}
		for i, v := range vals {
			vals[i] = sqliteValue(v)
		}
		t.Rows = append(t.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(path, err)
	}
	return frame.FromTable("", t), nil
}

func sqliteValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return frame.Normalize(v)
	}
}
