package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/game"
)

// SQLiteIndex is a secondary read model of session activity: session rows,
// interaction audits and periodic digests. It never feeds state back into a
// game; the engine stays in-memory only.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqAudit reqKind = iota + 1
	reqDigest
	reqSessionStart
	reqSessionEnd
)

type req struct {
	kind reqKind

	audit  game.AuditEntry
	digest game.DigestEntry
	start  sessionStartRow
	end    sessionEndRow
}

type sessionStartRow struct {
	PlayerID  string
	Name      string
	StartedAt string
}

type sessionEndRow struct {
	PlayerID string
	EndedAt  string
	Won      bool
	Touched  int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: bursty interaction audits must not stall a session loop.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is a decent
	// durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			player_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			won INTEGER NOT NULL DEFAULT 0,
			touched_cells INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			seq INTEGER PRIMARY KEY,
			tick INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			action TEXT NOT NULL,
			cell_i INTEGER NOT NULL,
			cell_j INTEGER NOT NULL,
			ok INTEGER NOT NULL,
			code TEXT,
			value INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_player_tick ON audits(player_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_cell ON audits(cell_i, cell_j);`,
		`CREATE TABLE IF NOT EXISTS digests (
			player_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			digest TEXT NOT NULL,
			visible_cells INTEGER NOT NULL,
			touched_cells INTEGER NOT NULL,
			won INTEGER NOT NULL,
			PRIMARY KEY (player_id, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteAudit(entry game.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, audit: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
	return nil
}

func (s *SQLiteIndex) WriteDigest(entry game.DigestEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqDigest, digest: entry}:
	default:
	}
	return nil
}

func (s *SQLiteIndex) RecordSessionStart(playerID, name string, startedAt time.Time) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqSessionStart, start: sessionStartRow{
		PlayerID:  playerID,
		Name:      name,
		StartedAt: startedAt.UTC().Format(time.RFC3339Nano),
	}}:
	default:
	}
	return nil
}

func (s *SQLiteIndex) RecordSessionEnd(playerID string, won bool, touchedCells int) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqSessionEnd, end: sessionEndRow{
		PlayerID: playerID,
		EndedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		Won:      won,
		Touched:  touchedCells,
	}}:
	default:
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(seq,tick,player_id,action,cell_i,cell_j,ok,code,value,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertDigest, _ := s.db.Prepare(`INSERT OR REPLACE INTO digests(player_id,tick,digest,visible_cells,touched_cells,won) VALUES(?,?,?,?,?,?)`)
	insertSession, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(player_id,name,started_at) VALUES(?,?,?)`)
	endSession, _ := s.db.Prepare(`UPDATE sessions SET ended_at=?, won=?, touched_cells=? WHERE player_id=?`)
	defer func() {
		if insertAudit != nil {
			_ = insertAudit.Close()
		}
		if insertDigest != nil {
			_ = insertDigest.Close()
		}
		if insertSession != nil {
			_ = insertSession.Close()
		}
		if endSession != nil {
			_ = endSession.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		// Audit rows are sequenced in the writer goroutine, continuing
		// after whatever an earlier process left behind.
		auditSeq int64
	)
	_ = s.db.QueryRow(`SELECT COALESCE(MAX(seq),0) FROM audits`).Scan(&auditSeq)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqAudit:
			a := r.audit
			raw, _ := json.Marshal(a)
			if insertAudit != nil {
				okInt := 0
				if a.OK {
					okInt = 1
				}
				auditSeq++
				if _, err := tx.Stmt(insertAudit).Exec(
					auditSeq,
					int64(a.Tick),
					a.Player,
					a.Action,
					a.Cell[0], a.Cell[1],
					okInt,
					a.Code,
					a.Value,
					string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqDigest:
			d := r.digest
			if insertDigest != nil {
				wonInt := 0
				if d.Won {
					wonInt = 1
				}
				if _, err := tx.Stmt(insertDigest).Exec(
					d.Player,
					int64(d.Tick),
					d.Digest,
					d.Visible,
					d.Touched,
					wonInt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSessionStart:
			if insertSession != nil {
				if _, err := tx.Stmt(insertSession).Exec(r.start.PlayerID, r.start.Name, r.start.StartedAt); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSessionEnd:
			if endSession != nil {
				wonInt := 0
				if r.end.Won {
					wonInt = 1
				}
				if _, err := tx.Stmt(endSession).Exec(r.end.EndedAt, wonInt, r.end.Touched, r.end.PlayerID); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
