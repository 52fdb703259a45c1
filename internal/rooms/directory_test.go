package rooms

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type nullSink struct{}

func (nullSink) Send(string, any) bool { return true }

func join(t *testing.T, d *Directory, roomID, connID, username string) []Peer {
	t.Helper()
	peers, _, err := d.Join(roomID, Peer{ConnID: connID, Username: username}, nullSink{})
	require.NoError(t, err)
	return peers
}

func TestDirectory_JoinOrderAndPeers(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	peers := join(t, d, "r1", "c1", "alice")
	req.Equal([]Peer{{ConnID: "c1", Username: "alice"}}, peers)

	peers = join(t, d, "r1", "c2", "bob")
	req.Equal([]Peer{
		{ConnID: "c1", Username: "alice"},
		{ConnID: "c2", Username: "bob"},
	}, peers)

	got, ok := d.Peers("r1")
	req.True(ok)
	req.Equal(peers, got)
}

func TestDirectory_DuplicateNameRejected(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	join(t, d, "r1", "c1", "bob")

	_, _, err := d.Join("r1", Peer{ConnID: "c2", Username: "bob"}, nullSink{})
	req.ErrorIs(err, ErrNameTaken)

	// Comparison is case-sensitive; a different casing is a different name.
	_, _, err = d.Join("r1", Peer{ConnID: "c3", Username: "Bob"}, nullSink{})
	req.NoError(err)

	// The same name is free in another room.
	_, _, err = d.Join("r2", Peer{ConnID: "c4", Username: "bob"}, nullSink{})
	req.NoError(err)
}

func TestDirectory_NameFreedByLeave(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	join(t, d, "r1", "c1", "alice")
	join(t, d, "r1", "c2", "bob")

	d.Leave("c1")

	// alice's name is immediately available again.
	peers := join(t, d, "r1", "c3", "alice")
	req.Equal([]Peer{
		{ConnID: "c2", Username: "bob"},
		{ConnID: "c3", Username: "alice"},
	}, peers)
}

func TestDirectory_DocumentLastWriterWins(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	_, ok := d.Snapshot("r1")
	req.False(ok)

	join(t, d, "r1", "c1", "alice")

	_, ok = d.Snapshot("r1")
	req.False(ok)

	_, ok = d.UpdateDocument("r1", "c1", "v1")
	req.True(ok)
	_, ok = d.UpdateDocument("r1", "c1", "v2")
	req.True(ok)

	text, ok := d.Snapshot("r1")
	req.True(ok)
	req.Equal("v2", text)

	// Updates for rooms nobody joined are dropped, not stored.
	_, ok = d.UpdateDocument("ghost", "c9", "x")
	req.False(ok)
	req.Equal(1, d.RoomCount())
}

func TestDirectory_UpdateExcludesSender(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	aliceSink := nullSink{}
	_, _, err := d.Join("r1", Peer{ConnID: "c1", Username: "alice"}, aliceSink)
	req.NoError(err)
	join(t, d, "r1", "c2", "bob")
	join(t, d, "r1", "c3", "carol")

	sinks, ok := d.UpdateDocument("r1", "c1", "text")
	req.True(ok)
	req.Len(sinks, 2)
}

func TestDirectory_LeaveAndTeardown(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	join(t, d, "r1", "c1", "alice")
	join(t, d, "r1", "c2", "bob")
	d.UpdateDocument("r1", "c1", "print(1)")

	deps := d.Leave("c1")
	req.Len(deps, 1)
	req.Equal("r1", deps[0].RoomID)
	req.Equal(Peer{ConnID: "c1", Username: "alice"}, deps[0].Peer)
	req.Equal([]Peer{{ConnID: "c2", Username: "bob"}}, deps[0].Remaining)
	req.Len(deps[0].Sinks, 1)

	// Document survives while the room is occupied.
	text, ok := d.Snapshot("r1")
	req.True(ok)
	req.Equal("print(1)", text)

	deps = d.Leave("c2")
	req.Len(deps, 1)
	req.Empty(deps[0].Remaining)
	req.Equal(0, d.RoomCount())

	// A fresh join with the same id starts with no document.
	join(t, d, "r1", "c3", "carol")
	_, ok = d.Snapshot("r1")
	req.False(ok)
}

func TestDirectory_LeaveUnknownConnIsNoop(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	join(t, d, "r1", "c1", "alice")

	req.Empty(d.Leave("ghost"))
	req.Equal(1, d.RoomCount())

	// A second leave for an already-removed connection is a no-op too.
	d.Leave("c1")
	req.Empty(d.Leave("c1"))
}

func TestDirectory_ListAndCounters(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	join(t, d, "r1", "c1", "alice")
	join(t, d, "r1", "c2", "bob")
	join(t, d, "r2", "c3", "carol")
	d.UpdateDocument("r2", "c3", "x")

	req.Equal(2, d.RoomCount())
	req.Equal(3, d.ParticipantCount())

	infos := d.List()
	req.Len(infos, 2)
	byID := map[string]RoomInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	req.Equal(2, byID["r1"].Participants)
	req.False(byID["r1"].HasDocument)
	req.True(byID["r2"].HasDocument)
}

func TestDirectory_ConcurrentJoinsUniqueNames(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	// Many racing joins with the same name: exactly one may win.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := d.Join("r1", Peer{ConnID: fmt.Sprintf("c%d", i), Username: "alice"}, nullSink{})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	req.Equal(1, accepted)
	peers, _ := d.Peers("r1")
	req.Len(peers, 1)
}
