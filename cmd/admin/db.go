package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	player := fs.String("player", "", "player_id filter (audits, digests)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "sessions"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*gameID) == "" {
			fmt.Fprintln(os.Stderr, "missing -game or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "games", *gameID, "index.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *limit <= 0 {
		*limit = 20
	}

	switch q {
	case "sessions":
		rows, err := db.Query(`SELECT player_id,name,started_at,COALESCE(ended_at,''),won,touched_cells FROM sessions ORDER BY started_at DESC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				PlayerID     string `json:"player_id"`
				Name         string `json:"name"`
				StartedAt    string `json:"started_at"`
				EndedAt      string `json:"ended_at,omitempty"`
				Won          bool   `json:"won"`
				TouchedCells int    `json:"touched_cells"`
			}
			if err := rows.Scan(&r.PlayerID, &r.Name, &r.StartedAt, &r.EndedAt, &r.Won, &r.TouchedCells); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "rows:", err)
			os.Exit(1)
		}

	case "audits":
		query := `SELECT seq,tick,player_id,action,cell_i,cell_j,ok,COALESCE(code,''),value FROM audits ORDER BY seq DESC LIMIT ?`
		qargs := []any{*limit}
		if strings.TrimSpace(*player) != "" {
			query = `SELECT seq,tick,player_id,action,cell_i,cell_j,ok,COALESCE(code,''),value FROM audits WHERE player_id=? ORDER BY seq DESC LIMIT ?`
			qargs = []any{strings.TrimSpace(*player), *limit}
		}
		rows, err := db.Query(query, qargs...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Seq      int64  `json:"seq"`
				Tick     int64  `json:"tick"`
				PlayerID string `json:"player_id"`
				Action   string `json:"action"`
				CellI    int    `json:"cell_i"`
				CellJ    int    `json:"cell_j"`
				OK       bool   `json:"ok"`
				Code     string `json:"code,omitempty"`
				Value    int    `json:"value"`
			}
			if err := rows.Scan(&r.Seq, &r.Tick, &r.PlayerID, &r.Action, &r.CellI, &r.CellJ, &r.OK, &r.Code, &r.Value); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "rows:", err)
			os.Exit(1)
		}

	case "digests":
		query := `SELECT player_id,tick,digest,visible_cells,touched_cells,won FROM digests ORDER BY tick DESC LIMIT ?`
		qargs := []any{*limit}
		if strings.TrimSpace(*player) != "" {
			query = `SELECT player_id,tick,digest,visible_cells,touched_cells,won FROM digests WHERE player_id=? ORDER BY tick DESC LIMIT ?`
			qargs = []any{strings.TrimSpace(*player), *limit}
		}
		rows, err := db.Query(query, qargs...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				PlayerID     string `json:"player_id"`
				Tick         int64  `json:"tick"`
				Digest       string `json:"digest"`
				VisibleCells int    `json:"visible_cells"`
				TouchedCells int    `json:"touched_cells"`
				Won          bool   `json:"won"`
			}
			if err := rows.Scan(&r.PlayerID, &r.Tick, &r.Digest, &r.VisibleCells, &r.TouchedCells, &r.Won); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "rows:", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data] [-game GAME|-db PATH] [-player P] [-limit N] sessions|audits|digests")
		os.Exit(2)
	}
}
