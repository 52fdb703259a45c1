package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collabeditgo/internal/ratelimit"
	"collabeditgo/internal/services/collab"
)

const dispatchTimeout = 1900 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // dev-only
	},
}

// ConnContext carries per-connection identity into event handlers.
type ConnContext struct {
	ConnID string
	Remote string
	Server *WsServer

	conn *clientConn
}

type WsServer struct {
	router    *Router
	collabSvc collab.ICollabService
	limiter   *ratelimit.Limiter
	readLimit int64
}

func NewWsServer(collabSvc collab.ICollabService, limiter *ratelimit.Limiter, readLimit int64) *WsServer {
	srv := &WsServer{
		router:    NewRouter(),
		collabSvc: collabSvc,
		limiter:   limiter,
		readLimit: readLimit,
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	// Admission control happens before any protocol work: a denied attempt
	// gets an error payload and the link is never upgraded.
	addr := ginCtx.ClientIP()
	if !s.limiter.Allow(addr) {
		zap.L().Warn("ws.rate_limited", zap.String("addr", addr))
		ginCtx.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts"})
		return
	}

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	conn := newClientConn(uuid.NewString(), rawConn)
	zap.L().Debug("ws.connected",
		zap.String("conn_id", conn.id),
		zap.String("addr", addr),
	)

	go conn.writePump()
	go s.reader(conn, addr)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 rooms/join -----------------------------------------------------------
	Register(
		s.router,
		"rooms/join",
		func(ctx context.Context, cc *ConnContext, req JoinRequest) (any, error) {
			if req.RoomID == "" || req.Username == "" {
				return nil, errors.New("room_id and username are required")
			}
			_, err := s.collabSvc.Join(ctx, req.RoomID, req.Username, cc.ConnID, cc.conn)
			return nil, err
		},
	)

	// 🔹 rooms/update ---------------------------------------------------------
	Register(
		s.router,
		"rooms/update",
		func(ctx context.Context, cc *ConnContext, req UpdateRequest) (any, error) {
			if req.RoomID == "" {
				return nil, errors.New("room_id is required")
			}
			return nil, s.collabSvc.UpdateDocument(ctx, req.RoomID, cc.ConnID, req.Text)
		},
	)

	// 🔹 rooms/sync -----------------------------------------------------------
	Register(
		s.router,
		"rooms/sync",
		func(ctx context.Context, cc *ConnContext, req SyncRequest) (any, error) {
			if req.TargetID == "" {
				return nil, errors.New("target_id is required")
			}
			return nil, s.collabSvc.SyncTo(ctx, req.TargetID, req.Text)
		},
	)

	// 🔹 rooms/leave ----------------------------------------------------------
	Register(
		s.router,
		"rooms/leave",
		func(ctx context.Context, cc *ConnContext, _ LeaveRequest) (any, error) {
			s.collabSvc.Disconnect(ctx, cc.ConnID)
			return nil, nil
		},
	)
}

func (s *WsServer) reader(conn *clientConn, addr string) {
	defer func() {
		// Transport-level link loss and explicit leave converge here; the
		// service treats a repeated disconnect as a no-op.
		s.collabSvc.Disconnect(context.Background(), conn.id)
		conn.close()
	}()

	conn.rawConn.SetReadLimit(s.readLimit)
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{ConnID: conn.id, Remote: addr, Server: s, conn: conn}

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				zap.L().Warn("ws.read", zap.String("conn_id", conn.id), zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			// Unframeable input is dropped; it must never disturb shared state.
			zap.L().Debug("ws.malformed_frame", zap.String("conn_id", conn.id))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			conn.Send("error", ErrorBody{Reason: reasonFor(err), Error: err.Error()})
			continue
		}

		// ---- success with a reply body -> {"event":"<evt>-ack"} ----
		if res != nil {
			conn.Send(env.Event+"-ack", res)
		}
	}
}

// reasonFor maps handler errors onto the wire-level reason the client
// switches on. Only a duplicate name is distinguished; everything else is a
// generic bad request.
func reasonFor(err error) string {
	if errors.Is(err, collab.ErrNameTaken) {
		return ReasonDuplicateName
	}
	return ReasonBadRequest
}
