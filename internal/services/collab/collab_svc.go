package collab

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"collabeditgo/internal/registry"
	"collabeditgo/internal/rooms"
)

// Outbound event names shared with the websocket layer.
const (
	EventJoined       = "rooms/joined"
	EventUpdate       = "rooms/update"
	EventDisconnected = "rooms/disconnected"
)

var (
	ErrNameTaken     = rooms.ErrNameTaken
	ErrRoomNotFound  = errors.New("room not found")
	ErrUnknownTarget = errors.New("unknown target connection")
)

// JoinedEvent is broadcast room-wide on every successful join, joiner
// included, so a late joiner learns its canonical peer list from the server
// rather than composing one locally.
type JoinedEvent struct {
	Peers    []rooms.Peer `json:"peers"`
	Username string       `json:"username"`
	ConnID   string       `json:"conn_id"`
}

// UpdateEvent carries document text, both for room broadcasts and for
// point-to-point snapshot/sync delivery.
type UpdateEvent struct {
	Text string `json:"text"`
}

type DisconnectedEvent struct {
	ConnID   string `json:"conn_id"`
	Username string `json:"username"`
}

// ICollabService is the presence & sync protocol handler. Per connection the
// protocol is a small state machine (unjoined, joined, gone); all handlers
// are event-driven and never block on I/O beyond fire-and-forget sends.
type ICollabService interface {
	Join(ctx context.Context, roomID, username, connID string, sink rooms.Sink) ([]rooms.Peer, error)
	UpdateDocument(ctx context.Context, roomID, connID, text string) error
	SyncTo(ctx context.Context, targetConnID, text string) error
	Disconnect(ctx context.Context, connID string)
}

type collabService struct {
	directory *rooms.Directory
	registry  *registry.Registry

	// mu serializes event processing so a read-modify-write of room state
	// and the enqueue of its fan-out frames form one atomic step. Frames
	// enqueued in processing order drain per connection in that order,
	// which is the whole ordering contract.
	mu    sync.Mutex
	sinks map[string]rooms.Sink
}

func NewCollabService(dir *rooms.Directory, reg *registry.Registry) ICollabService {
	return &collabService{
		directory: dir,
		registry:  reg,
		sinks:     make(map[string]rooms.Sink),
	}
}

func (s *collabService) Join(_ context.Context, roomID, username, connID string, sink rooms.Sink) ([]rooms.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	peers, targets, err := s.directory.Join(roomID, rooms.Peer{ConnID: connID, Username: username}, sink)
	if err != nil {
		zap.L().Info("room.join_rejected",
			zap.String("room", roomID),
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	s.registry.Set(connID, username)
	s.sinks[connID] = sink

	// Bring the joiner up to date before it sees its own joined event.
	if text, ok := s.directory.Snapshot(roomID); ok {
		sink.Send(EventUpdate, UpdateEvent{Text: text})
	}

	ev := JoinedEvent{Peers: peers, Username: username, ConnID: connID}
	for _, t := range targets {
		t.Send(EventJoined, ev)
	}

	zap.L().Info("room.join",
		zap.String("room", roomID),
		zap.String("username", username),
		zap.String("conn_id", connID),
		zap.Int("peers", len(peers)),
	)
	return peers, nil
}

func (s *collabService) UpdateDocument(_ context.Context, roomID, connID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, ok := s.directory.UpdateDocument(roomID, connID, text)
	if !ok {
		return ErrRoomNotFound
	}
	for _, t := range targets {
		t.Send(EventUpdate, UpdateEvent{Text: text})
	}
	zap.L().Debug("room.update",
		zap.String("room", roomID),
		zap.String("conn_id", connID),
		zap.Int("bytes", len(text)),
	)
	return nil
}

// SyncTo pushes text straight to one connection. It deliberately leaves the
// room's stored document untouched: the requester may hold fresher text than
// the directory, and the two channels stay independent last-writer-wins
// streams.
func (s *collabService) SyncTo(_ context.Context, targetConnID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sink, ok := s.sinks[targetConnID]
	if !ok {
		return ErrUnknownTarget
	}
	sink.Send(EventUpdate, UpdateEvent{Text: text})
	return nil
}

// Disconnect handles both explicit leaves and transport-level link loss.
// Calling it again for an already-removed connection is a no-op.
func (s *collabService) Disconnect(_ context.Context, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, _ := s.registry.Get(connID)
	departures := s.directory.Leave(connID)
	for _, dep := range departures {
		ev := DisconnectedEvent{ConnID: connID, Username: username}
		for _, t := range dep.Sinks {
			t.Send(EventDisconnected, ev)
		}
		zap.L().Info("room.disconnect",
			zap.String("room", dep.RoomID),
			zap.String("username", username),
			zap.String("conn_id", connID),
			zap.Int("remaining", len(dep.Remaining)),
		)
	}

	s.registry.Remove(connID)
	delete(s.sinks, connID)
}
