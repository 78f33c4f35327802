package datarecording

import (
	"database/sql"
	"fmt"
	"reflect"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// QueryParams restricts what a query returns.
type QueryParams struct {
	// Where is an optional SQL condition, without the WHERE keyword.
	Where string

	// Args holds the placeholder arguments for Where.
	Args []any

	// Limit caps the number of returned rows. Zero means no cap.
	Limit int

	// Offset skips rows before returning.
	Offset int
}

// DataReader queries recorded tables back into struct instances. A table
// must be mapped to its entry type before it can be queried.
type DataReader interface {
	// MapTable associates a table name with the struct type of its entries.
	MapTable(tableName string, sampleEntry any)

	// Query returns the entries of one table as instances of the mapped
	// struct type, plus the total row count ignoring Limit and Offset.
	Query(tableName string, params QueryParams) ([]any, int)

	// Close releases the database connection.
	Close() error
}

type sqliteReader struct {
	*sql.DB

	typeMap map[string]reflect.Type
}

// NewReader opens a reader on the SQLite database at the given path (without
// the .sqlite3 suffix).
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename+".sqlite3")
	if err != nil {
		panic(err)
	}

	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

// NewReaderWithDB creates a reader on an existing database connection.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) Query(
	tableName string,
	params QueryParams,
) ([]any, int) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		panic(fmt.Sprintf("table %s is not mapped", tableName))
	}

	query := "SELECT * FROM " + tableName
	args := []any{}
	if params.Where != "" {
		query += " WHERE " + params.Where
		args = append(args, params.Args...)
	}
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d",
			params.Limit, params.Offset)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	entries := r.scanRowsToSlice(rows, structType)
	total := r.queryTotalCount(tableName, params)

	return entries, total
}

func (r *sqliteReader) queryTotalCount(
	tableName string,
	params QueryParams,
) int {
	query := "SELECT COUNT(*) FROM " + tableName
	args := []any{}
	if params.Where != "" {
		query += " WHERE " + params.Where
		args = append(args, params.Args...)
	}

	var count int
	err := r.DB.QueryRow(query, args...).Scan(&count)
	if err != nil {
		panic(err)
	}

	return count
}

func (r *sqliteReader) scanRowsToSlice(
	rows *sql.Rows,
	structType reflect.Type,
) []any {
	entries := []any{}

	for rows.Next() {
		entryPtr := reflect.New(structType)
		entry := entryPtr.Elem()

		fields := make([]any, structType.NumField())
		for i := range fields {
			fields[i] = entry.Field(i).Addr().Interface()
		}

		if err := rows.Scan(fields...); err != nil {
			panic(err)
		}

		entries = append(entries, entry.Interface())
	}

	return entries
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
