package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/NikkyAI/pentagame-server/game/board"
	"github.com/NikkyAI/pentagame-server/game/state"
	"github.com/NikkyAI/pentagame-server/game/store"
)

// outbound delivers server frames to one connected client. deliver must
// not block; it reports false when the receiver is gone or saturated.
type outbound interface {
	deliver(env Envelope) bool
}

// discardOutbound swallows frames; it backs headless (REST/MCP) moves.
type discardOutbound struct{}

func (discardOutbound) deliver(Envelope) bool { return true }

// Options tunes the coordinator's mailbox and persistence pool.
type Options struct {
	// MailboxDepth bounds the command channel.
	MailboxDepth int
	// StoreWorkers bounds concurrent persistence calls.
	StoreWorkers int
	// CallTimeout bounds each persistence call.
	CallTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MailboxDepth < 1 {
		o.MailboxDepth = 256
	}
	if o.StoreWorkers < 1 {
		o.StoreWorkers = 8
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 10 * time.Second
	}
	return o
}

// Coordinator is the single serialized owner of all room and session
// bookkeeping. Every mutation of its tables runs on the goroutine
// started by Run, fed through one command channel; persistence calls are
// pushed onto a bounded worker pool and re-enter the loop as
// completions.
type Coordinator struct {
	topo  *board.Topology
	store store.Store
	opts  Options

	commands chan func()
	workers  chan struct{}
	quit     chan struct{}
	done     chan struct{}

	// Loop-owned state. Never touched outside the Run goroutine.
	nextID   uint64
	sessions map[uint64]*member
	rooms    map[int64]*room
}

// member is one registered session as the coordinator sees it.
type member struct {
	id     uint64
	userID uuid.UUID
	roomID int64
	out    outbound
}

// room is one active game with its connected sessions and cached figure
// state. inflight and pending serialize persistence-backed moves within
// the room so their validate-then-commit windows never interleave.
type room struct {
	id       int64
	members  map[uint64]*member
	state    *state.GraphState
	inflight bool
	pending  []func()
}

// RoomInfo is the reply to a room metadata query.
type RoomInfo struct {
	Name        string
	Description string
	State       int
	Players     []store.Player
}

// NewCoordinator creates a coordinator over a shared topology and a
// persistence store. Call Run before using it.
func NewCoordinator(topo *board.Topology, st store.Store, opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		topo:     topo,
		store:    st,
		opts:     opts,
		commands: make(chan func(), opts.MailboxDepth),
		workers:  make(chan struct{}, opts.StoreWorkers),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		sessions: make(map[uint64]*member),
		rooms:    make(map[int64]*room),
	}
}

// Run consumes the mailbox until Stop is called. It must run on exactly
// one goroutine.
func (c *Coordinator) Run() {
	defer close(c.done)
	for {
		select {
		case cmd := <-c.commands:
			cmd()
		case <-c.quit:
			return
		}
	}
}

// Stop shuts the coordinator down and waits for the loop to exit.
func (c *Coordinator) Stop() {
	close(c.quit)
	<-c.done
}

// post enqueues a command onto the mailbox, preserving per-caller order.
func (c *Coordinator) post(cmd func()) error {
	select {
	case <-c.quit:
		return ErrShuttingDown
	case c.commands <- cmd:
		return nil
	}
}

// dispatch hands a persistence job to the worker pool. A saturated pool
// yields ErrStoreBusy immediately instead of blocking the loop.
func (c *Coordinator) dispatch(job func(ctx context.Context)) error {
	select {
	case c.workers <- struct{}{}:
		go func() {
			defer func() { <-c.workers }()
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.CallTimeout)
			defer cancel()
			job(ctx)
		}()
		return nil
	default:
		return ErrStoreBusy
	}
}

// Connect registers a session for an authenticated user. It resolves the
// user's current room through the store and lazily builds the room's
// figure state on first contact.
func (c *Coordinator) Connect(userID uuid.UUID, out outbound) (sessionID uint64, roomID int64, err error) {
	type connectReply struct {
		sessionID uint64
		roomID    int64
		err       error
	}
	reply := make(chan connectReply, 1)

	fail := func(err error) { reply <- connectReply{err: err} }

	if postErr := c.post(func() {
		err := c.dispatch(func(ctx context.Context) {
			roomID, ok, err := c.store.CurrentRoom(ctx, userID)
			if err != nil {
				fail(fmt.Errorf("failed to resolve current room: %w", err))
				return
			}
			if !ok {
				fail(ErrNotInRoom)
				return
			}
			if postErr := c.post(func() {
				c.admit(userID, roomID, out, func(sessionID uint64, err error) {
					reply <- connectReply{sessionID: sessionID, roomID: roomID, err: err}
				})
			}); postErr != nil {
				fail(postErr)
			}
		})
		if err != nil {
			fail(err)
		}
	}); postErr != nil {
		return 0, 0, postErr
	}

	r := <-reply
	return r.sessionID, r.roomID, r.err
}

// admit runs on the loop: it ensures the room is loaded, then registers
// the session and announces it to the other members.
func (c *Coordinator) admit(userID uuid.UUID, roomID int64, out outbound, done func(uint64, error)) {
	if rm, ok := c.rooms[roomID]; ok {
		done(c.register(rm, userID, out), nil)
		return
	}

	err := c.dispatch(func(ctx context.Context) {
		st, err := state.BuildFromHistory(ctx, c.store, c.topo, roomID)
		if err != nil {
			done(0, err)
			return
		}
		if postErr := c.post(func() {
			rm, ok := c.rooms[roomID]
			if !ok {
				rm = &room{id: roomID, members: make(map[uint64]*member), state: st}
				c.rooms[roomID] = rm
			}
			done(c.register(rm, userID, out), nil)
		}); postErr != nil {
			done(0, postErr)
		}
	})
	if err != nil {
		done(0, err)
	}
}

func (c *Coordinator) register(rm *room, userID uuid.UUID, out outbound) uint64 {
	c.nextID++
	m := &member{id: c.nextID, userID: userID, roomID: rm.id, out: out}
	c.sessions[m.id] = m
	rm.members[m.id] = m

	c.broadcast(rm, Envelope{
		Action: ActionUserJoined,
		Data:   map[string]string{"user": userID.String()},
	}, m.id)

	return m.id
}

// Disconnect removes a session. Safe to call more than once; only the
// first call for a session has any effect.
func (c *Coordinator) Disconnect(sessionID uint64) {
	if err := c.post(func() { c.evict(sessionID) }); err != nil {
		log.Printf("disconnect of session %d dropped: %v", sessionID, err)
	}
}

// evict runs on the loop.
func (c *Coordinator) evict(sessionID uint64) {
	m, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	delete(c.sessions, sessionID)

	rm := c.rooms[m.roomID]
	if rm == nil {
		return
	}
	delete(rm.members, sessionID)

	c.broadcast(rm, Envelope{
		Action: ActionUserLeft,
		Data:   map[string]string{"user": m.userID.String()},
	}, 0)

	c.evictRoomIfIdle(rm)
}

// evictRoomIfIdle drops an empty, quiescent room from the table. Loop
// only. The cached state is dropped with the room; a later reconnect
// rebuilds it from persisted history, so writes that happened
// out-of-band while the room was empty are picked up instead of served
// stale. A room with a move still in flight (or queued) stays
// registered so the commit lands in the cache a concurrent reconnect
// would attach to; finishMove completes the eviction afterwards.
func (c *Coordinator) evictRoomIfIdle(rm *room) {
	if len(rm.members) == 0 && !rm.inflight && len(rm.pending) == 0 && c.rooms[rm.id] == rm {
		delete(c.rooms, rm.id)
	}
}

// LeaveRoom detaches a session on the client's request. The connection
// stays open; the caller is expected to close it afterwards.
func (c *Coordinator) LeaveRoom(sessionID uint64) error {
	reply := make(chan error, 1)
	if err := c.post(func() {
		c.evict(sessionID)
		reply <- nil
	}); err != nil {
		return err
	}
	return <-reply
}

// broadcast delivers env to every member of rm except skip (0 skips
// nobody). Delivery is best-effort per receiver.
func (c *Coordinator) broadcast(rm *room, env Envelope, skip uint64) {
	for id, m := range rm.members {
		if id == skip {
			continue
		}
		if !m.out.deliver(env) {
			log.Printf("dropping frame for session %d: receiver unavailable", id)
		}
	}
}

// RoomInfo reads a room's metadata and player list.
func (c *Coordinator) RoomInfo(roomID int64) (RoomInfo, error) {
	type infoReply struct {
		info RoomInfo
		err  error
	}
	reply := make(chan infoReply, 1)

	if err := c.post(func() {
		err := c.dispatch(func(ctx context.Context) {
			summary, err := c.store.RoomSummary(ctx, roomID)
			if err != nil {
				reply <- infoReply{err: err}
				return
			}
			players, err := c.store.RoomPlayers(ctx, roomID)
			if err != nil {
				reply <- infoReply{err: err}
				return
			}
			reply <- infoReply{info: RoomInfo{
				Name:        summary.Name,
				Description: summary.Description,
				State:       summary.State,
				Players:     players,
			}}
		})
		if err != nil {
			reply <- infoReply{err: err}
		}
	}); err != nil {
		return RoomInfo{}, err
	}

	r := <-reply
	return r.info, r.err
}

// ListUsers reads a room's player list.
func (c *Coordinator) ListUsers(roomID int64) ([]store.Player, error) {
	type usersReply struct {
		players []store.Player
		err     error
	}
	reply := make(chan usersReply, 1)

	if err := c.post(func() {
		err := c.dispatch(func(ctx context.Context) {
			players, err := c.store.RoomPlayers(ctx, roomID)
			reply <- usersReply{players: players, err: err}
		})
		if err != nil {
			reply <- usersReply{err: err}
		}
	}); err != nil {
		return nil, err
	}

	r := <-reply
	return r.players, r.err
}

// MakeMove validates and records a regular move for a connected session.
// The reply is nil on success, a *ValidationError for illegal or
// repetitive moves, and an infrastructure error otherwise. Room state is
// only updated after the store confirmed the write.
func (c *Coordinator) MakeMove(sessionID uint64, req MoveRequest) error {
	return c.moveRequest(sessionID, req, false)
}

// PlaceFigure puts an off-board figure onto an empty vertex.
func (c *Coordinator) PlaceFigure(sessionID uint64, req MoveRequest) error {
	return c.moveRequest(sessionID, req, true)
}

func (c *Coordinator) moveRequest(sessionID uint64, req MoveRequest, placement bool) error {
	reply := make(chan error, 1)
	if err := c.post(func() {
		m, ok := c.sessions[sessionID]
		if !ok {
			reply <- ErrNoSuchSession
			return
		}
		rm := c.rooms[m.roomID]
		if rm == nil {
			reply <- ErrNoSuchSession
			return
		}
		c.enqueueMove(rm, m, req, placement, reply)
	}); err != nil {
		return err
	}
	return <-reply
}

// SubmitMove validates and records a move for a user without a live
// session (REST and MCP clients). The user must currently be joined to
// roomID; connected room members still receive the broadcast.
func (c *Coordinator) SubmitMove(userID uuid.UUID, roomID int64, req MoveRequest, placement bool) error {
	reply := make(chan error, 1)

	if err := c.post(func() {
		err := c.dispatch(func(ctx context.Context) {
			current, ok, err := c.store.CurrentRoom(ctx, userID)
			if err != nil {
				reply <- fmt.Errorf("failed to resolve current room: %w", err)
				return
			}
			if !ok || current != roomID {
				reply <- ErrNotInRoom
				return
			}
			if postErr := c.post(func() {
				c.ensureRoom(roomID, func(rm *room, err error) {
					if err != nil {
						reply <- err
						return
					}
					m := &member{userID: userID, roomID: roomID, out: discardOutbound{}}
					c.enqueueMove(rm, m, req, placement, reply)
				})
			}); postErr != nil {
				reply <- postErr
			}
		})
		if err != nil {
			reply <- err
		}
	}); err != nil {
		return err
	}

	return <-reply
}

// ensureRoom runs on the loop and loads the room's state if needed.
func (c *Coordinator) ensureRoom(roomID int64, done func(*room, error)) {
	if rm, ok := c.rooms[roomID]; ok {
		done(rm, nil)
		return
	}

	err := c.dispatch(func(ctx context.Context) {
		st, err := state.BuildFromHistory(ctx, c.store, c.topo, roomID)
		if err != nil {
			done(nil, err)
			return
		}
		if postErr := c.post(func() {
			rm, ok := c.rooms[roomID]
			if !ok {
				rm = &room{id: roomID, members: make(map[uint64]*member), state: st}
				c.rooms[roomID] = rm
			}
			done(rm, nil)
		}); postErr != nil {
			done(nil, postErr)
		}
	})
	if err != nil {
		done(nil, err)
	}
}

// enqueueMove runs on the loop. Moves within one room run strictly one
// at a time; later requests wait in the room's queue.
func (c *Coordinator) enqueueMove(rm *room, m *member, req MoveRequest, placement bool, reply chan<- error) {
	start := func() { c.startMove(rm, m, req, placement, reply) }
	if rm.inflight {
		rm.pending = append(rm.pending, start)
		return
	}
	rm.inflight = true
	start()
}

// finishMove runs on the loop after a move settled, successfully or not,
// and starts the next queued move of the room if any.
func (c *Coordinator) finishMove(rm *room) {
	if len(rm.pending) > 0 {
		next := rm.pending[0]
		rm.pending = rm.pending[1:]
		next()
		return
	}
	rm.inflight = false

	// Rooms touched only by sessionless moves, or abandoned while a move
	// was in flight, get their deferred eviction here.
	c.evictRoomIfIdle(rm)
}

// failMove answers the caller and unblocks the room queue. Loop only.
func (c *Coordinator) failMove(rm *room, reply chan<- error, err error) {
	reply <- err
	c.finishMove(rm)
}

// settle posts a worker-side outcome back onto the loop.
func (c *Coordinator) settle(rm *room, reply chan<- error, err error) {
	if postErr := c.post(func() { c.failMove(rm, reply, err) }); postErr != nil {
		reply <- postErr
	}
}

// startMove runs on the loop with the room's move slot held.
func (c *Coordinator) startMove(rm *room, m *member, req MoveRequest, placement bool, reply chan<- error) {
	if placement {
		c.startPlacement(rm, m, req, reply)
		return
	}

	// The figure's source is whatever persistence last recorded, not
	// whatever the client claims.
	err := c.dispatch(func(ctx context.Context) {
		src := state.StartingPosition(req.Figure)
		repetitive := false

		rec, err := c.store.LatestMove(ctx, rm.id, m.userID, req.Figure)
		switch {
		case errors.Is(err, store.ErrNoMove):
			// canonical starting position
		case err != nil:
			c.settle(rm, reply, fmt.Errorf("failed to read move history: %w", err))
			return
		default:
			src = rec.Dest
			repetitive = rec.Dest == req.To
		}

		if src.IsOffBoard() {
			c.settle(rm, reply, validationErrorf("figure %d has not been placed yet", req.Figure))
			return
		}
		if repetitive {
			c.settle(rm, reply, validationErrorf("repetitive move: figure %d already stands on %s", req.Figure, req.To))
			return
		}

		if postErr := c.post(func() { c.validateMove(rm, m, req, src, reply) }); postErr != nil {
			reply <- postErr
		}
	})
	if err != nil {
		c.failMove(rm, reply, err)
	}
}

// validateMove runs on the loop with exclusive access to the room's
// cached figure state.
func (c *Coordinator) validateMove(rm *room, m *member, req MoveRequest, src board.Position, reply chan<- error) {
	view, err := rm.state.Occupy(c.topo)
	if err != nil {
		c.failMove(rm, reply, err)
		return
	}

	res, err := view.Validate(src, req.To)
	if err != nil {
		// A position outside the topology in a client payload is a bad
		// request, not a server fault.
		c.failMove(rm, reply, validationErrorf("invalid move: %v", err))
		return
	}
	if !res.Legal {
		c.failMove(rm, reply, validationErrorf("no unoccupied path from %s to %s", src, req.To))
		return
	}

	rec := store.MoveRecord{
		RoomID: rm.id,
		UserID: m.userID,
		Figure: req.Figure,
		Src:    src,
		Dest:   req.To,
	}
	c.persistMove(rm, m, rec, res, reply)
}

// startPlacement runs on the loop. Placement needs no path search, only
// an empty destination and a figure still waiting off-board.
func (c *Coordinator) startPlacement(rm *room, m *member, req MoveRequest, reply chan<- error) {
	pos, err := rm.state.Position(req.Figure)
	if err != nil {
		c.failMove(rm, reply, validationErrorf("invalid placement: %v", err))
		return
	}
	if !pos.IsOffBoard() {
		c.failMove(rm, reply, validationErrorf("figure %d already stands on %s", req.Figure, pos))
		return
	}
	if !c.topo.Contains(req.To) {
		c.failMove(rm, reply, validationErrorf("%s is not on the board", req.To))
		return
	}

	view, err := rm.state.Occupy(c.topo)
	if err != nil {
		c.failMove(rm, reply, err)
		return
	}
	if owner, taken := view.Owner(req.To); taken {
		c.failMove(rm, reply, validationErrorf("%s is held by figure %d", req.To, owner))
		return
	}

	rec := store.MoveRecord{
		RoomID: rm.id,
		UserID: m.userID,
		Figure: req.Figure,
		Src:    board.OffBoard,
		Dest:   req.To,
	}
	c.persistMove(rm, m, rec, board.MoveResult{Legal: true}, reply)
}

// persistMove runs on the loop; it records the move off-loop and only
// mutates the cached state once the store confirmed the write.
func (c *Coordinator) persistMove(rm *room, m *member, rec store.MoveRecord, res board.MoveResult, reply chan<- error) {
	err := c.dispatch(func(ctx context.Context) {
		if err := c.store.RecordMove(ctx, rec); err != nil {
			c.settle(rm, reply, fmt.Errorf("failed to record move: %w", err))
			return
		}
		if postErr := c.post(func() { c.commitMove(rm, m, rec, res, reply) }); postErr != nil {
			reply <- postErr
		}
	})
	if err != nil {
		c.failMove(rm, reply, err)
	}
}

// commitMove runs on the loop after persistence confirmed the write.
func (c *Coordinator) commitMove(rm *room, m *member, rec store.MoveRecord, res board.MoveResult, reply chan<- error) {
	if err := rm.state.Set(rec.Figure, rec.Dest); err != nil {
		c.failMove(rm, reply, err)
		return
	}

	data := map[string]string{
		"user":   rec.UserID.String(),
		"figure": fmt.Sprintf("%d", rec.Figure),
		"from":   rec.Src.String(),
		"to":     rec.Dest.String(),
	}
	if res.Collision {
		data["collided"] = fmt.Sprintf("%d", res.Collider)
	}

	action := ActionMoveMade
	if rec.Src.IsOffBoard() {
		action = ActionPlacementDone
	}
	c.broadcast(rm, Envelope{Action: action, Data: data}, 0)

	// A player figure vacating a junction calls for a gray stopper.
	if rec.Figure.IsPlayerFigure() && rec.Src.IsBase() && rec.Src.Base >= 5 {
		m.out.deliver(Envelope{
			Action: ActionPlacementRequired,
			Data:   map[string]string{"user": rec.UserID.String()},
		})
	}

	reply <- nil
	c.finishMove(rm)
}

// SetRoomRunning starts or stops a room. Host only.
func (c *Coordinator) SetRoomRunning(sessionID uint64, running bool, message string) error {
	reply := make(chan error, 1)

	if err := c.post(func() {
		m, ok := c.sessions[sessionID]
		if !ok {
			reply <- ErrNoSuchSession
			return
		}
		rm := c.rooms[m.roomID]
		if rm == nil {
			reply <- ErrNoSuchSession
			return
		}

		err := c.dispatch(func(ctx context.Context) {
			summary, err := c.store.RoomSummary(ctx, rm.id)
			if err != nil {
				reply <- err
				return
			}
			if summary.HostID != m.userID {
				reply <- ErrNotHost
				return
			}

			roomState := store.RoomStateRunning
			action := RequestStartRoom
			if !running {
				roomState = store.RoomStateStopped
				action = RequestStopRoom
			}
			if err := c.store.SetRoomState(ctx, rm.id, roomState); err != nil {
				reply <- err
				return
			}

			if postErr := c.post(func() {
				c.broadcast(rm, Envelope{
					Action: action,
					Data:   map[string]string{"user": m.userID.String(), "message": message},
				}, 0)
				reply <- nil
			}); postErr != nil {
				reply <- postErr
			}
		})
		if err != nil {
			reply <- err
		}
	}); err != nil {
		return err
	}

	return <-reply
}

// Stats reports the current session and room counts.
func (c *Coordinator) Stats() (sessions, rooms int, err error) {
	type statsReply struct{ sessions, rooms int }
	reply := make(chan statsReply, 1)

	if err := c.post(func() {
		reply <- statsReply{sessions: len(c.sessions), rooms: len(c.rooms)}
	}); err != nil {
		return 0, 0, err
	}

	r := <-reply
	return r.sessions, r.rooms, nil
}
