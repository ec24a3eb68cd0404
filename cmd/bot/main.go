package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/protocol"
)

// bot walks randomly around a starting coordinate, reports its viewport, and
// greedily picks up and merges any equal-valued caches it can reach.
func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
		lat  = flag.Float64("lat", 51.5013, "starting latitude")
		lng  = flag.Float64("lng", -0.1419, "starting longitude")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{
		conn:   conn,
		log:    logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		lat:    *lat,
		lng:    *lng,
		nextID: 1,
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.welcome(&w)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			b.handleState(&st)

		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			if !res.OK {
				logger.Printf("RESULT ref=%s code=%s %s", res.Ref, res.Code, res.Message)
			}
		}
	}
}

type bot struct {
	conn *websocket.Conn
	log  *log.Logger
	rng  *rand.Rand

	lat, lng float64
	cellSize float64
	carrying []int

	nextID uint64
}

func (b *bot) welcome(w *protocol.WelcomeMsg) {
	b.cellSize = w.GameParams.CellSize
	b.log.Printf("WELCOME player_id=%s seed=%d cell_size=%g win_threshold=%d",
		w.PlayerID, w.GameParams.Seed, w.GameParams.CellSize, w.GameParams.WinThreshold)
	b.reportPosition()
}

func (b *bot) handleState(st *protocol.StateMsg) {
	b.carrying = st.Carrying
	if st.Won {
		b.log.Printf("won at tick=%d", st.Tick)
	}

	// Prefer acting over walking: place onto a matching cache first, then
	// pick something up if a slot is free.
	if b.act(st) {
		return
	}

	// Random walk within a few cells of the current position.
	b.lat += float64(b.rng.Intn(5)-2) * b.cellSize
	b.lng += float64(b.rng.Intn(5)-2) * b.cellSize
	b.reportPosition()
}

// act issues at most one ACT per state message; returns true if one was sent.
func (b *bot) act(st *protocol.StateMsg) bool {
	if len(b.carrying) > 0 {
		held := b.carrying[0]
		for _, c := range st.Cells {
			if c.Interactable && c.HasCache && c.Value == held {
				b.sendAct(protocol.ActPlace, c.Cell)
				return true
			}
		}
	}
	for _, c := range st.Cells {
		if c.Interactable && c.HasCache {
			b.sendAct(protocol.ActPickup, c.Cell)
			return true
		}
	}
	return false
}

func (b *bot) sendAct(verb string, cell [2]int) {
	id := fmt.Sprintf("A%d", b.nextID)
	b.nextID++
	_ = b.conn.WriteJSON(protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Verb:            verb,
		Cell:            cell,
	})
}

func (b *bot) reportPosition() {
	_ = b.conn.WriteJSON(protocol.MoveMsg{
		Type:            protocol.TypeMove,
		ProtocolVersion: protocol.Version,
		Lat:             b.lat,
		Lng:             b.lng,
	})
	// Keep a viewport a bit wider than the proximity radius around us.
	span := 8 * b.cellSize
	_ = b.conn.WriteJSON(protocol.ViewportMsg{
		Type:            protocol.TypeViewport,
		ProtocolVersion: protocol.Version,
		South:           b.lat - span,
		North:           b.lat + span,
		West:            b.lng - span,
		East:            b.lng + span,
	})
}
