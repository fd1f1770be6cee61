package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"timecard/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT NOT NULL,
  inputType TEXT NOT NULL,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'new',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(path, hash)
);

CREATE TABLE IF NOT EXISTS reports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  kind TEXT NOT NULL, -- parsed|varied
  templateType TEXT NOT NULL,
  metadataJson TEXT NOT NULL,
  rawText TEXT NOT NULL DEFAULT '',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_reports_document ON reports(documentId, kind);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  reportId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  date TEXT NOT NULL,
  dayOfWeek TEXT,
  startTime TEXT,
  endTime TEXT,
  total REAL,
  rawJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(reportId, lineNo),
  FOREIGN KEY(reportId) REFERENCES reports(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertDocument(path, inputType, hash string) (internal.DocumentRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO documents (path, inputType, hash)
VALUES (?, ?, ?)
ON CONFLICT(path, hash) DO UPDATE SET
  inputType=excluded.inputType,
  updatedAt=CURRENT_TIMESTAMP
`, path, inputType, hash)
	if err != nil {
		return internal.DocumentRow{}, err
	}

	var row internal.DocumentRow
	err = d.conn.QueryRow(`
SELECT id, path, inputType, hash, status FROM documents WHERE path = ? AND hash = ?
`, path, hash).Scan(&row.ID, &row.Path, &row.InputType, &row.Hash, &row.Status)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	return row, nil
}

func (d *DB) UpdateDocumentStatus(documentID int, status string) error {
	_, err := d.conn.Exec(`UPDATE documents SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, documentID)
	return err
}

// InsertReport stores a parsed or varied report with its records in one
// transaction. Re-running a document replaces its previous reports of the
// same kind.
func (d *DB) InsertReport(documentID int, kind string, report internal.ParsedReport) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT id FROM reports WHERE documentId = ? AND kind = ?`, documentID, kind)
	if err != nil {
		return 0, err
	}
	var stale []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, err
		}
		stale = append(stale, id)
	}
	_ = rows.Close()
	for _, id := range stale {
		if _, err := tx.Exec(`DELETE FROM records WHERE reportId = ?`, id); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`DELETE FROM reports WHERE id = ?`, id); err != nil {
			return 0, err
		}
	}

	metadataJSON, _ := json.Marshal(report.Metadata)
	result, err := tx.Exec(`
INSERT INTO reports (documentId, kind, templateType, metadataJson, rawText)
VALUES (?, ?, ?, ?, ?)
`, documentID, kind, string(report.TemplateType), string(metadataJSON), report.RawText)
	if err != nil {
		return 0, err
	}
	reportID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO records (reportId, lineNo, date, dayOfWeek, startTime, endTime, total, rawJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range report.Records {
		rawJSON, _ := json.Marshal(r)
		if _, err := stmt.Exec(reportID, i+1, r.Date, r.DayOfWeek, r.StartTime, r.EndTime, r.Total, string(rawJSON)); err != nil {
			return 0, err
		}
	}

	return reportID, tx.Commit()
}

func (d *DB) GetReport(documentID int, kind string) (*internal.ParsedReport, error) {
	var reportID int64
	var templateType, metadataJSON, rawText string
	err := d.conn.QueryRow(`
SELECT id, templateType, metadataJson, rawText FROM reports
WHERE documentId = ? AND kind = ? ORDER BY id DESC LIMIT 1
`, documentID, kind).Scan(&reportID, &templateType, &metadataJSON, &rawText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	report := internal.ParsedReport{TemplateType: internal.TemplateType(templateType), RawText: rawText}
	_ = json.Unmarshal([]byte(metadataJSON), &report.Metadata)

	rows, err := d.conn.Query(`SELECT rawJson FROM records WHERE reportId = ? ORDER BY lineNo ASC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rawJSON string
		if err := rows.Scan(&rawJSON); err != nil {
			return nil, err
		}
		var record internal.AttendanceRecord
		if err := json.Unmarshal([]byte(rawJSON), &record); err != nil {
			return nil, err
		}
		report.Records = append(report.Records, record)
	}
	return &report, rows.Err()
}

// GetCompareRows joins the latest parsed and varied reports of a document by
// line ordinal for the side-by-side export.
func (d *DB) GetCompareRows(documentID int) ([]internal.CompareRow, error) {
	parsed, err := d.GetReport(documentID, "parsed")
	if err != nil {
		return nil, err
	}
	varied, err := d.GetReport(documentID, "varied")
	if err != nil {
		return nil, err
	}
	if parsed == nil || varied == nil {
		return nil, fmt.Errorf("document %d is missing a parsed or varied report", documentID)
	}

	out := make([]internal.CompareRow, 0, len(parsed.Records))
	for i, orig := range parsed.Records {
		row := internal.CompareRow{
			LineNo:    i + 1,
			Date:      orig.Date,
			DayOfWeek: orig.DayOfWeek,
			OrigStart: orig.StartTime,
			OrigEnd:   orig.EndTime,
			OrigTotal: orig.Total,
		}
		if i < len(varied.Records) {
			v := varied.Records[i]
			row.VariedStart = v.StartTime
			row.VariedEnd = v.EndTime
			row.VariedTotal = v.Total
			row.VariedNotes = v.Notes
			if v.Detail != nil {
				row.VariedBreak = v.Detail.BreakTime
				row.VariedH100 = v.Detail.Hours100
				row.VariedH125 = v.Detail.Hours125
				row.VariedH150 = v.Detail.Hours150
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (d *DB) InsertRun(traceID string, documentID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, documentId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, documentID, string(timingsJSON), string(countsJSON))
	return err
}
