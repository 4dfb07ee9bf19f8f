package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"go.uber.org/zap"
)

const parquetTable = "indicator_rows"

// ParquetWriter stages a table in an in-memory DuckDB database and exports
// it with COPY.
type ParquetWriter struct {
	outputPath string
	logger     *logger.Logger
}

func NewParquetWriter(outputPath string, logger *logger.Logger) *ParquetWriter {
	return &ParquetWriter{
		outputPath: outputPath,
		logger:     logger,
	}
}

// Write implements TableWriter.
func (w *ParquetWriter) Write(table *types.IndicatorTable) error {
	if err := ensureDir(w.outputPath); err != nil {
		return err
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	if _, err := db.Exec(createTableSQL(table)); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create staging table", err)
	}

	if err := w.insertRows(db, table); err != nil {
		return err
	}

	_, err = db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`,
		parquetTable, strings.ReplaceAll(w.outputPath, "'", "''")))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export %s", w.outputPath)
	}

	w.logger.Debug("Wrote indicator table",
		zap.String("path", w.outputPath),
		zap.String("symbol", table.Symbol),
		zap.Int("rows", table.Len()),
	)

	return nil
}

// OutputPath implements TableWriter.
func (w *ParquetWriter) OutputPath() string {
	return w.outputPath
}

func (w *ParquetWriter) insertRows(db *sql.DB, table *types.IndicatorTable) error {
	columns := []string{"time", "symbol"}
	for _, name := range table.ColumnNames() {
		columns = append(columns, quoteIdent(name))
	}

	placeholders := make([]any, len(columns))
	for i := range placeholders {
		placeholders[i] = nil
	}

	query, _, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Insert(parquetTable).
		Columns(columns...).
		Values(placeholders...).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to build insert", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to prepare insert", err)
	}
	defer stmt.Close()

	for i := range table.Times {
		if _, err := stmt.Exec(rowValues(table, i)...); err != nil {
			_ = tx.Rollback()

			return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to insert row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to commit rows", err)
	}

	return nil
}

func createTableSQL(table *types.IndicatorTable) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CREATE TABLE %s (time TIMESTAMP, symbol VARCHAR", parquetTable)

	for _, c := range table.Columns {
		fmt.Fprintf(&b, ", %s DOUBLE", quoteIdent(c.Name))
	}

	for _, c := range table.Counters {
		fmt.Fprintf(&b, ", %s BIGINT", quoteIdent(c.Name))
	}

	b.WriteString(")")

	return b.String()
}

func rowValues(table *types.IndicatorTable, i int) []any {
	values := make([]any, 0, 2+len(table.Columns)+len(table.Counters))
	values = append(values, table.Times[i].UTC(), table.Symbol)

	for _, c := range table.Columns {
		if missing(c.Values[i]) {
			values = append(values, nil)

			continue
		}

		values = append(values, c.Values[i])
	}

	for _, c := range table.Counters {
		values = append(values, int64(c.Values[i]))
	}

	return values
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
