// Package hub implements the Session Hub (spec §4.5): the per-draft actor
// that multiplexes live client sessions onto a single *draft.Engine,
// translating between the wire protocol (pkg/wire) and Engine calls, and
// fanning Engine-emitted events back out to the right subset of sessions.
//
// Each Hub owns one Engine exclusively; Engine mutation happens only on
// the Hub's own loop goroutine, so the Engine never races against itself
// (spec §5). Unlike the design notes' generic actor-with-output-channel
// sketch, this Engine has no goroutine or channel of its own — it is a
// plain synchronous struct whose methods return the events they produced.
// The Hub's loop calls those methods directly and fans out what they
// return, which satisfies the same ordering and no-cycle requirements
// with one less layer of indirection.
package hub

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/pkg/wire"
)

// Snapshotter durably persists an Engine's full state. Save must return
// before the Hub acknowledges the mutation that produced the new state
// (spec §5): a failed write transitions the draft to Terminated rather
// than risk memory/disk divergence (spec §7.5).
type Snapshotter interface {
	Save(e *draft.Engine) error
}

// LifecycleRecorder is the Lifecycle Ledger's write side, as seen by the
// Hub. Recording is best-effort and must never block or fail the caller.
type LifecycleRecorder interface {
	Record(id draft.DraftID, phase draft.Phase, detail string)
}

// Config bundles the Hub's tunables, sourced from Config & Bootstrap.
type Config struct {
	HeartbeatInterval time.Duration
	WarningThreshold  time.Duration
	ErrorThreshold    time.Duration
}

// Hub is the per-draft actor. Construct with New and it starts its own
// loop goroutine immediately; call Shutdown to stop it.
type Hub struct {
	engine *draft.Engine
	cfg    Config
	snap   Snapshotter
	ledger LifecycleRecorder
	log    *zap.Logger

	inbox chan Msg

	sessions map[draft.SeatID]*Session

	// recordedPhase is the last phase written to the ledger.
	recordedPhase draft.Phase

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Hub around engine and starts its loop. engine must not
// be touched by any other goroutine from this point on.
func New(engine *draft.Engine, cfg Config, snap Snapshotter, ledger LifecycleRecorder, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		engine:   engine,
		cfg:      cfg,
		snap:     snap,
		ledger:   ledger,
		log:      log.With(zap.String("draft_id", string(engine.ID))),
		inbox:    make(chan Msg, 64),
		sessions: make(map[draft.SeatID]*Session),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),

		recordedPhase: engine.Phase,
	}
	go h.heartbeatLoop()
	go h.loop()
	return h
}

// Inbox exposes the actor's mailbox so the WS layer can send it messages.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) heartbeatLoop() {
	t := time.NewTicker(h.cfg.HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-t.C:
			select {
			case h.inbox <- HeartbeatTick{}:
			case <-h.ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.closeAllSessions()
			return
		case m := <-h.inbox:
			h.handle(m)
		}
	}
}

func (h *Hub) handle(m Msg) {
	switch msg := m.(type) {
	case JoinMsg:
		h.handleJoin(msg)
	case RejoinMsg:
		h.handleRejoin(msg)
	case ClientMsg:
		h.handleClient(msg)
	case DisconnectMsg:
		h.handleDisconnect(msg)
	case HeartbeatTick:
		h.handleHeartbeatTick()
	case ShutdownMsg:
		h.closeAllSessions()
		close(msg.Reply)
		h.cancel()
	case ViewMsg:
		msg.Reply <- h.view()
	}
}

func (h *Hub) handleJoin(msg JoinMsg) {
	if h.engine.Phase != draft.PhaseLobby {
		msg.Reply <- JoinResult{Phase: h.engine.Phase, Err: draft.ErrWrongPhase}
		return
	}

	seat, err := h.engine.Join()
	if err != nil {
		msg.Reply <- JoinResult{Phase: h.engine.Phase, Err: err}
		return
	}

	if !h.persistOrTerminate("seat joined") {
		msg.Reply <- JoinResult{Phase: h.engine.Phase, Err: draft.ErrInvariantViolated}
		return
	}

	session := newSession(msg.ConnID, seat.ID)
	h.sessions[seat.ID] = session
	msg.Reply <- JoinResult{Session: session, Seat: seat, Phase: h.engine.Phase}

	h.broadcast(wire.PlayerList(h.engine.PlayerList()))
}

func (h *Hub) handleRejoin(msg RejoinMsg) {
	seat, ok := h.engine.SeatByID(msg.Seat)
	if !ok {
		msg.Reply <- RejoinResult{Err: draft.ErrUnknownSeat}
		return
	}

	if old, bound := h.sessions[msg.Seat]; bound && old.ConnID != msg.ConnID {
		close(old.Outbox)
	}

	session := newSession(msg.ConnID, msg.Seat)
	h.sessions[msg.Seat] = session

	msg.Reply <- RejoinResult{
		Session:    session,
		InProgress: h.engine.Phase == draft.PhaseInProgress,
		Pool:       seat.Pool,
		Pack:       currentPackCards(seat),
	}
}

func (h *Hub) handleClient(msg ClientMsg) {
	session, ok := h.sessions[msg.Seat]
	if !ok || session.ConnID != msg.ConnID {
		return
	}

	switch inbound := msg.Inbound.(type) {
	case wire.HeartBeat:
		h.engine.Heartbeat(msg.Seat, time.Now())

	case wire.SetName:
		if err := h.engine.SetName(msg.Seat, inbound.Name); err != nil {
			h.log.Debug("rejected SetName", zap.Error(err), zap.String("seat", string(msg.Seat)))
			return
		}
		if !h.persistOrTerminate("seat renamed") {
			return
		}
		h.broadcast(wire.PlayerList(h.engine.PlayerList()))

	case wire.ReadyState:
		if h.engine.Phase != draft.PhaseLobby {
			return
		}
		events, err := h.engine.SetReady(msg.Seat, inbound.Ready)
		if err != nil {
			h.log.Warn("engine invariant violated on SetReady", zap.Error(err))
		}
		h.commitAndDeliver(events, "ready state changed")

	case wire.Pick:
		outcome, _ := h.engine.Pick(msg.Seat, inbound.Index)
		if outcome.Rejected {
			return
		}
		h.commitAndDeliver(outcome.Events, "card picked")

	case wire.Disconnected:
		h.handleDisconnect(DisconnectMsg{ConnID: msg.ConnID})
	}
}

func (h *Hub) handleDisconnect(msg DisconnectMsg) {
	for seat, session := range h.sessions {
		if session.ConnID == msg.ConnID {
			close(session.Outbox)
			delete(h.sessions, seat)
			return
		}
	}
}

func (h *Hub) handleHeartbeatTick() {
	events := h.engine.UpdateHeartbeatStatuses(time.Now(), h.cfg.WarningThreshold, h.cfg.ErrorThreshold)
	if len(events) == 0 {
		return
	}
	h.commitAndDeliver(events, "heartbeat status changed")
}

// commitAndDeliver persists the Engine's new state before delivering the
// events that describe it; on a persistence failure the original events
// are discarded in favor of the Terminate events, so a client never
// learns of a mutation the disk does not agree happened.
func (h *Hub) commitAndDeliver(events []draft.Event, detail string) {
	if !h.persistOrTerminate(detail) {
		h.deliver(h.engine.Terminate("snapshot write failed"))
		return
	}
	h.deliver(events)
}

func (h *Hub) persistOrTerminate(detail string) bool {
	if err := h.snap.Save(h.engine); err != nil {
		h.log.Error("snapshot write failed", zap.Error(err))
		termEvents := h.engine.Terminate(fmt.Sprintf("snapshot write failed: %v", err))
		// Best-effort: try once more to persist the Terminated state so a
		// forensic read sees the true final phase. A second failure is
		// only logged; the in-memory engine is already Terminated.
		if err := h.snap.Save(h.engine); err != nil {
			h.log.Error("snapshot write failed while terminating", zap.Error(err))
		}
		h.deliver(termEvents)
		h.ledger.Record(h.engine.ID, draft.PhaseTerminated, "snapshot write failed")
		h.recordedPhase = draft.PhaseTerminated
		return false
	}

	if h.engine.Phase != h.recordedPhase {
		h.ledger.Record(h.engine.ID, h.engine.Phase, detail)
		h.recordedPhase = h.engine.Phase
	}
	return true
}

// deliver fans Engine events out to the right subset of sessions, per the
// broadcast discipline in spec §4.5.
func (h *Hub) deliver(events []draft.Event) {
	for _, ev := range events {
		switch e := ev.(type) {
		case draft.PackEvent:
			h.send(e.Seat, wire.Pack(e.Pack))
		case draft.PickSuccessfulEvent:
			h.send(e.Seat, wire.PickSuccessful(e.Card))
		case draft.FinishedEvent:
			h.send(e.Seat, wire.Finished(e.Pool))
		case draft.PlayerUpdateEvent:
			h.broadcast(wire.PlayerUpdate(e.Details))
		case draft.FatalErrorEvent:
			h.broadcast(wire.FatalError(e.Message))
		}
	}
}

func (h *Hub) send(seat draft.SeatID, msg wire.ServerMessage) {
	session, ok := h.sessions[seat]
	if !ok {
		return
	}
	select {
	case session.Outbox <- msg:
	default:
		h.log.Warn("dropping slow session", zap.String("seat", string(seat)))
		close(session.Outbox)
		delete(h.sessions, seat)
	}
}

func (h *Hub) broadcast(msg wire.ServerMessage) {
	for seat, session := range h.sessions {
		select {
		case session.Outbox <- msg:
		default:
			h.log.Warn("dropping slow session", zap.String("seat", string(seat)))
			close(session.Outbox)
			delete(h.sessions, seat)
		}
	}
}

func (h *Hub) closeAllSessions() {
	for seat, session := range h.sessions {
		close(session.Outbox)
		delete(h.sessions, seat)
	}
}

func currentPackCards(seat *draft.Seat) []catalog.Card {
	if seat.Current == nil {
		return nil
	}
	return seat.Current.Cards
}

func (h *Hub) view() View {
	return View{
		Phase:    h.engine.Phase,
		Seats:    h.engine.PlayerList(),
		Sessions: len(h.sessions),
	}
}

// Shutdown stops the actor's loop and closes every session's outbox,
// blocking until the loop has exited.
func (h *Hub) Shutdown() {
	reply := make(chan struct{})
	select {
	case h.inbox <- ShutdownMsg{Reply: reply}:
		<-reply
	case <-h.done:
	}
	<-h.done
}
