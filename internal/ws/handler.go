// Package ws upgrades HTTP requests to WebSocket sessions and bridges the
// wire protocol (pkg/wire) to a draft's Session Hub (spec §4.5, §6).
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/internal/hub"
	"github.com/boosterdraft/draftd/internal/registry"
	"github.com/boosterdraft/draftd/pkg/wire"
)

const writeTimeout = 10 * time.Second

// Handler upgrades GET /ws/{draftId} (first-time join) and
// GET /ws/{draftId}/{seatId} (rejoin) to a WebSocket session.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID := draft.DraftID(chi.URLParam(r, "draftId"))
		h, ok := reg.Get(draftID)
		if !ok {
			http.Error(w, "unknown draft", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "closing")

		connID, err := gonanoid.New(12)
		if err != nil {
			conn.Close(websocket.StatusInternalError, "id generation failed")
			return
		}

		seatParam := chi.URLParam(r, "seatId")
		var (
			session *hub.Session
			seat    draft.SeatID
		)

		if seatParam == "" {
			session, seat, ok = joinFirstTime(r.Context(), conn, h, draftID, connID, log)
		} else {
			session, seat, ok = rejoin(r.Context(), conn, h, draftID, connID, draft.SeatID(seatParam), log)
		}
		if !ok {
			conn.Close(websocket.StatusNormalClosure, "rejected")
			return
		}

		writerDone := make(chan struct{})
		go writeLoop(r.Context(), conn, session, writerDone)

		readLoop(r.Context(), conn, h, connID, seat, log)

		h.Inbox() <- hub.DisconnectMsg{ConnID: connID}
		<-writerDone
		conn.Close(websocket.StatusNormalClosure, "bye")
	}
}

func joinFirstTime(ctx context.Context, conn *websocket.Conn, h *hub.Hub, draftID draft.DraftID, connID string, log *zap.Logger) (*hub.Session, draft.SeatID, bool) {
	reply := make(chan hub.JoinResult, 1)
	h.Inbox() <- hub.JoinMsg{ConnID: connID, Reply: reply}
	result := <-reply

	if result.Err != nil {
		rejection := wire.Started()
		if result.Phase == draft.PhaseFinished || result.Phase == draft.PhaseTerminated {
			rejection = wire.Ended()
		}
		writeOne(ctx, conn, rejection, log)
		return nil, "", false
	}

	writeOne(ctx, conn, wire.Connected(draftID, result.Seat.ID), log)
	return result.Session, result.Seat.ID, true
}

func rejoin(ctx context.Context, conn *websocket.Conn, h *hub.Hub, draftID draft.DraftID, connID string, seatID draft.SeatID, log *zap.Logger) (*hub.Session, draft.SeatID, bool) {
	reply := make(chan hub.RejoinResult, 1)
	h.Inbox() <- hub.RejoinMsg{ConnID: connID, Seat: seatID, Reply: reply}
	result := <-reply

	if result.Err != nil {
		writeOne(ctx, conn, wire.FatalError("unknown seat"), log)
		return nil, "", false
	}

	writeOne(ctx, conn, wire.Reconnected(draftID, seatID, result.InProgress, result.Pool, result.Pack), log)
	return result.Session, seatID, true
}

func writeOne(ctx context.Context, conn *websocket.Conn, msg wire.ServerMessage, log *zap.Logger) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to encode outbound message", zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, payload); err != nil {
		log.Debug("write failed", zap.Error(err))
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, session *hub.Session, done chan struct{}) {
	defer close(done)
	for msg := range session.Outbox {
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			return
		}
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, h *hub.Hub, connID string, seat draft.SeatID, log *zap.Logger) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug("read failed", zap.Error(err))
				}
			}
			return
		}

		var cm wire.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			continue
		}

		inbound, err := wire.Decode(cm)
		if err != nil {
			continue
		}

		h.Inbox() <- hub.ClientMsg{ConnID: connID, Seat: seat, Inbound: inbound}
	}
}
