package datarecording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder is a DataRecorder that stores message traces in a
// ClickHouse server. It is meant for long flood runs where a single SQLite
// file becomes the bottleneck. Tables are fixed: only the message-trace and
// run-info schemas are supported.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	msgTraceBatch []msgTraceEntryDB
	runInfoBatch  []runInfoEntryDB

	tables map[string]chTableType

	entryCount int
}

type chTableType int

const (
	chTableMsgTrace chTableType = iota
	chTableRunInfo
)

type msgTraceEntryDB struct {
	ID        string
	Src       uint64
	Dst       uint64
	Bytes     int64
	Outcome   string
	StartTime float64
	EndTime   float64
}

type runInfoEntryDB struct {
	Property string
	Value    string
}

// NewClickHouseRecorder connects to a ClickHouse server.
func NewClickHouseRecorder(
	addr, database, username, password string,
) (*ClickHouseRecorder, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to clickhouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: 100000,
		tables:    make(map[string]chTableType),
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

// CreateTable creates one of the supported tables. The sample entry decides
// nothing here; the schemas are fixed.
func (r *ClickHouseRecorder) CreateTable(tableName string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ddl string
	switch tableName {
	case "msg_trace":
		r.tables[tableName] = chTableMsgTrace
		ddl = `CREATE TABLE IF NOT EXISTS msg_trace (
			ID String,
			Src UInt64,
			Dst UInt64,
			Bytes Int64,
			Outcome String,
			StartTime Float64,
			EndTime Float64
		) ENGINE = MergeTree() ORDER BY (StartTime, ID)`
	case "run_info":
		r.tables[tableName] = chTableRunInfo
		ddl = `CREATE TABLE IF NOT EXISTS run_info (
			Property String,
			Value String
		) ENGINE = MergeTree() ORDER BY Property`
	default:
		panic(fmt.Sprintf("table %s is not supported by the ClickHouse recorder",
			tableName))
	}

	if err := r.conn.Exec(context.Background(), ddl); err != nil {
		panic(err)
	}
}

// InsertData buffers one entry. The entry must carry the fields of the fixed
// schema for its table.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	fields := structs.Map(entry)

	switch kind {
	case chTableMsgTrace:
		r.msgTraceBatch = append(r.msgTraceBatch, msgTraceEntryDB{
			ID:        fields["ID"].(string),
			Src:       fields["Src"].(uint64),
			Dst:       fields["Dst"].(uint64),
			Bytes:     fields["Bytes"].(int64),
			Outcome:   fields["Outcome"].(string),
			StartTime: fields["StartTime"].(float64),
			EndTime:   fields["EndTime"].(float64),
		})
	case chTableRunInfo:
		r.runInfoBatch = append(r.runInfoBatch, runInfoEntryDB{
			Property: fields["Property"].(string),
			Value:    fields["Value"].(string),
		})
	}

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.flushLocked()
	}
}

// ListTables returns the names of the created tables.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for table := range r.tables {
		tables = append(tables, table)
	}

	return tables
}

// Flush sends every buffered entry to the server.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushLocked()
}

func (r *ClickHouseRecorder) flushLocked() {
	ctx := context.Background()

	if len(r.msgTraceBatch) > 0 {
		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO msg_trace")
		if err != nil {
			panic(err)
		}
		for _, e := range r.msgTraceBatch {
			err := batch.Append(
				e.ID, e.Src, e.Dst, e.Bytes,
				e.Outcome, e.StartTime, e.EndTime)
			if err != nil {
				panic(err)
			}
		}
		if err := batch.Send(); err != nil {
			panic(err)
		}
		r.msgTraceBatch = nil
	}

	if len(r.runInfoBatch) > 0 {
		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO run_info")
		if err != nil {
			panic(err)
		}
		for _, e := range r.runInfoBatch {
			if err := batch.Append(e.Property, e.Value); err != nil {
				panic(err)
			}
		}
		if err := batch.Send(); err != nil {
			panic(err)
		}
		r.runInfoBatch = nil
	}

	r.entryCount = 0
}

// Close flushes and closes the connection.
func (r *ClickHouseRecorder) Close() {
	r.Flush()

	if err := r.conn.Close(); err != nil {
		panic(err)
	}
}
