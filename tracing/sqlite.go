package tracing

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteTraceWriter is a trace backend that writes tasks to a SQLite database.
type SQLiteTraceWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName           string
	tasksToWriteToDB []Task
	batchSize        int
}

// NewSQLiteTraceWriter creates a new SQLiteTraceWriter.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	w := &SQLiteTraceWriter{
		dbName:    path,
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// Init establishes a connection to the database and prepares the table.
func (t *SQLiteTraceWriter) Init() {
	t.createDatabase()
	t.createTable()
	t.prepareStatement()
}

// Write buffers a task to be written to the database.
func (t *SQLiteTraceWriter) Write(task Task) {
	t.tasksToWriteToDB = append(t.tasksToWriteToDB, task)
	if len(t.tasksToWriteToDB) >= t.batchSize {
		t.Flush()
	}
}

// Flush writes all the buffered tasks into the database.
func (t *SQLiteTraceWriter) Flush() {
	for _, task := range t.tasksToWriteToDB {
		_, err := t.statement.Exec(
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Where,
			float64(task.StartTime),
			float64(task.EndTime),
		)
		if err != nil {
			panic(err)
		}
	}

	t.tasksToWriteToDB = nil
}

func (t *SQLiteTraceWriter) createDatabase() {
	if t.dbName == "" {
		t.dbName = "mm2s_trace_" + xid.New().String()
	}

	filename := t.dbName + ".sqlite3"

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func (t *SQLiteTraceWriter) createTable() {
	_, err := t.Exec(`
		CREATE TABLE IF NOT EXISTS trace (
			task_id TEXT,
			parent_id TEXT,
			kind TEXT,
			what TEXT,
			location TEXT,
			start_time REAL,
			end_time REAL
		);
	`)
	if err != nil {
		panic(err)
	}
}

func (t *SQLiteTraceWriter) prepareStatement() {
	stmt, err := t.Prepare(`
		INSERT INTO trace (
			task_id, parent_id, kind, what, location, start_time, end_time
		) VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		panic(fmt.Errorf("cannot prepare insert statement: %w", err))
	}

	t.statement = stmt
}
