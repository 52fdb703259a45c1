package rooms

import (
	"errors"
	"sync"

	"github.com/samber/lo"
)

var ErrNameTaken = errors.New("username already taken in room")

// Sink is the outbound side of one connection. Send must not block; it
// reports whether the frame was accepted for delivery.
type Sink interface {
	Send(event string, body any) bool
}

// Peer is the public identity of a joined participant.
type Peer struct {
	ConnID   string `json:"conn_id"`
	Username string `json:"username"`
}

// RoomInfo is a read-only summary served by the REST surface.
type RoomInfo struct {
	ID           string
	Participants int
	HasDocument  bool
}

// Departure describes one room a connection was removed from.
type Departure struct {
	RoomID    string
	Peer      Peer
	Remaining []Peer
	Sinks     []Sink
}

type participant struct {
	peer Peer
	sink Sink
}

// room holds the participants in join order plus the last accepted
// document text. Rooms exist only between the first Join and the Leave
// that empties them.
type room struct {
	participants []participant
	document     string
	hasDocument  bool
}

// Directory owns every room and participant record. It is mutated only by
// the protocol handler; the transport layer never touches it directly.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*room)}
}

// Join adds the peer to the room, creating the room on first join. It
// rejects with ErrNameTaken when the username is already held by a live
// participant of the same room (exact, case-sensitive match). On success it
// returns the full peer list in join order, including the new entrant, and
// the sinks of every participant for the joined broadcast.
func (d *Directory) Join(roomID string, p Peer, sink Sink) ([]Peer, []Sink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if ok {
		taken := lo.SomeBy(r.participants, func(pt participant) bool {
			return pt.peer.Username == p.Username
		})
		if taken {
			return nil, nil, ErrNameTaken
		}
	} else {
		r = &room{}
		d.rooms[roomID] = r
	}

	r.participants = append(r.participants, participant{peer: p, sink: sink})
	return peersOf(r), sinksOf(r), nil
}

// Snapshot returns the room's current document, if any update has been
// accepted since the room was created.
func (d *Directory) Snapshot(roomID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok || !r.hasDocument {
		return "", false
	}
	return r.document, true
}

// UpdateDocument stores text as the room's document, last writer wins, and
// returns the sinks of every participant except the sender. Updates for
// unknown rooms are dropped: rooms are created by Join only.
func (d *Directory) UpdateDocument(roomID, senderConnID, text string) ([]Sink, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}
	r.document = text
	r.hasDocument = true

	others := lo.Filter(r.participants, func(pt participant, _ int) bool {
		return pt.peer.ConnID != senderConnID
	})
	return lo.Map(others, func(pt participant, _ int) Sink { return pt.sink }), true
}

// Leave removes the connection's participant record from every room it
// belongs to and deletes rooms that become empty, document included. The
// returned departures carry the remaining peers and their sinks for the
// disconnected broadcast. Unknown connections yield no departures.
func (d *Directory) Leave(connID string) []Departure {
	d.mu.Lock()
	defer d.mu.Unlock()

	var departures []Departure
	for roomID, r := range d.rooms {
		idx := -1
		for i, pt := range r.participants {
			if pt.peer.ConnID == connID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		left := r.participants[idx].peer
		r.participants = append(r.participants[:idx], r.participants[idx+1:]...)

		if len(r.participants) == 0 {
			delete(d.rooms, roomID)
			departures = append(departures, Departure{RoomID: roomID, Peer: left})
			continue
		}
		departures = append(departures, Departure{
			RoomID:    roomID,
			Peer:      left,
			Remaining: peersOf(r),
			Sinks:     sinksOf(r),
		})
	}
	return departures
}

// Peers returns the room's current participants in join order.
func (d *Directory) Peers(roomID string) ([]Peer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}
	return peersOf(r), true
}

// List summarizes all live rooms for the REST surface.
func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(d.rooms))
	for id, r := range d.rooms {
		infos = append(infos, RoomInfo{
			ID:           id,
			Participants: len(r.participants),
			HasDocument:  r.hasDocument,
		})
	}
	return infos
}

func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) ParticipantCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, r := range d.rooms {
		n += len(r.participants)
	}
	return n
}

func peersOf(r *room) []Peer {
	return lo.Map(r.participants, func(pt participant, _ int) Peer { return pt.peer })
}

func sinksOf(r *room) []Sink {
	return lo.Map(r.participants, func(pt participant, _ int) Sink { return pt.sink })
}
