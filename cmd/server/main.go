package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/game"
	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/persistence/indexdb"
	persistlog "github.com/JaydenRRamirez/D3-JaydenRamirez/internal/persistence/log"
	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/tuning"
	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		gameID     = flag.String("game", "game_1", "game id (namespaces the data directory)")
		seed       = flag.Int64("seed", 1337, "world seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite session/audit index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	gameDir := filepath.Join(*dataDir, "games", *gameID)
	_ = os.MkdirAll(gameDir, 0o755)

	cfg := gameConfigFromTuning(*gameID, *seed, tune)

	// Optional: read-model index backend (never restores game state).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(gameDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	} else {
		logger.Printf("index db disabled")
	}

	auditLog := persistlog.NewAuditLogger(gameDir)
	digestLog := persistlog.NewDigestLogger(gameDir)
	defer auditLog.Close()
	defer digestLog.Close()

	srvWS := ws.NewServer(cfg, logger)
	if idx != nil {
		srvWS.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})
		srvWS.SetDigestLogger(multiDigestLogger{a: digestLog, b: idx})
		srvWS.SetSessionRecorder(idx)
	} else {
		srvWS.SetAuditLogger(multiAuditLogger{a: auditLog})
		srvWS.SetDigestLogger(multiDigestLogger{a: digestLog})
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP cachegrid_sessions_started_total Total sessions opened since start.\n")
		fmt.Fprintf(rw, "# TYPE cachegrid_sessions_started_total counter\n")
		fmt.Fprintf(rw, "cachegrid_sessions_started_total{game=%q} %d\n", *gameID, srvWS.SessionsStarted())
	})
	if envBool("CG_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (CG_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", srvWS.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s seed=%d spawn_permille=%d", *addr, cfg.Seed, cfg.SpawnPermille)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func gameConfigFromTuning(id string, seed int64, t tuning.Tuning) game.Config {
	bands := make([]game.ValueBand, 0, len(t.ValueBands))
	for _, b := range t.ValueBands {
		bands = append(bands, game.ValueBand{Value: b.Value, Permille: b.Permille})
	}
	return game.Config{
		ID:               id,
		Seed:             seed,
		CellSize:         t.CellSize,
		SpawnPermille:    t.SpawnPermille,
		Bands:            bands,
		ProximityRadius:  t.ProximityRadius,
		CarrySlots:       t.CarrySlots,
		WinThreshold:     t.WinThreshold,
		TickRateHz:       t.TickRateHz,
		MaxViewportCells: t.MaxViewportCells,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

type multiAuditLogger struct {
	a game.AuditLogger
	b game.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry game.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}

type multiDigestLogger struct {
	a game.DigestLogger
	b game.DigestLogger
}

func (m multiDigestLogger) WriteDigest(entry game.DigestEntry) error {
	if m.a != nil {
		_ = m.a.WriteDigest(entry)
	}
	if m.b != nil {
		_ = m.b.WriteDigest(entry)
	}
	return nil
}
