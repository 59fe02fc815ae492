package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/denisok6893-rgb/property-investment/internal/dataset"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

const (
	defaultStreamRows = 100
	maxStreamRows     = 10000
	defaultStreamSeed = 42
	streamWriteWait   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleDatasetStream upgrades to a websocket and sends n sampled dataset
// rows, one JSON message each, then a normal close frame.
func (s *Server) handleDatasetStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	n := defaultStreamRows
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > maxStreamRows {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_n", Value: v, Message: "n must be in 1.." + strconv.Itoa(maxStreamRows)})
			return
		}
		n = parsed
	}
	seed := uint64(defaultStreamSeed)
	if v := q.Get("seed"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_seed", Value: v})
			return
		}
		seed = parsed
	}

	sampler, err := dataset.NewSampler(s.catalog(), seed, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading is only needed to notice the client closing the socket.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	err = s.Generator.Stream(ctx, sampler.Samples(n), func(row domain.DatasetRow) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(row)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("dataset stream: %v", err)
		}
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
