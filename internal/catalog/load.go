package catalog

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	json "github.com/goccy/go-json"

	"github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

// Load reads a catalog file. Parquet and CSV go through DuckDB; JSON arrays
// and JSON lines are decoded directly.
func Load(ctx context.Context, log *logger.Logger, path string) (*Store, error) {
	var (
		rows []Raw
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".csv":
		rows, err = loadDuckDB(ctx, path)
	case ".json":
		rows, err = loadJSON(path)
	case ".jsonl", ".ndjson":
		rows, err = loadJSONLines(path)
	default:
		return nil, fmt.Errorf("catalog: unsupported file type %q", path)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	games := make([]domain.Game, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		g, ok := Normalize(r)
		if !ok {
			skipped++
			continue
		}
		games = append(games, g)
	}
	store := NewStore(games)
	if store.Len() == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecords, path)
	}
	if log != nil {
		log.Info("catalog loaded",
			"path", path,
			"rows", len(rows),
			"games", store.Len(),
			"skipped", skipped,
			"duplicates", len(games)-store.Len(),
		)
	}
	return store, nil
}

func loadDuckDB(ctx context.Context, path string) ([]Raw, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}
	source := fmt.Sprintf("%s('%s')", reader, strings.ReplaceAll(path, "'", "''"))

	cols, err := describe(ctx, db, source)
	if err != nil {
		return nil, err
	}
	selects := make([]string, len(cols))
	for i, c := range cols {
		selects[i] = `CAST("` + strings.ReplaceAll(c, `"`, `""`) + `" AS VARCHAR)`
	}
	rs, err := db.QueryContext(ctx, "SELECT "+strings.Join(selects, ", ")+" FROM "+source)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []Raw
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rs.Next() {
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(Raw, len(cols))
		for i, c := range cols {
			if vals[i].Valid {
				r[strings.ToLower(c)] = vals[i].String
			}
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func describe(ctx context.Context, db *sql.DB, source string) ([]string, error) {
	rs, err := db.QueryContext(ctx, "SELECT column_name FROM (DESCRIBE SELECT * FROM "+source+")")
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var cols []string
	for rs.Next() {
		var c string
		if err := rs.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rs.Err()
}

func loadJSON(path string) ([]Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []Raw
	dec := json.NewDecoder(bufio.NewReader(f))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func loadJSONLines(path string) ([]Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []Raw
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var r Raw
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, r)
	}
	return rows, sc.Err()
}
