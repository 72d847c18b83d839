package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"postboard/internal/auth"
	"postboard/internal/featureflags"
	"postboard/internal/notifications"
	"postboard/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/graph-gophers/graphql-go"
)

// Subscription socket subprotocols.
const (
	protocolTransportWS = "graphql-transport-ws"
	protocolLegacyWS    = "graphql-ws"
)

// Message types of both subprotocols.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionTerminate = "connection_terminate"
	msgKeepAlive           = "ka"
	msgPing                = "ping"
	msgPong                = "pong"
	msgSubscribe           = "subscribe"
	msgStart               = "start"
	msgNext                = "next"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
	msgStop                = "stop"
)

const localsSocketToken = "socketToken"

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscriptionSocket upgrades GET /graphql to the subscription socket when the
// request asks for it, and passes every other request on.
func (s *Server) SubscriptionSocket() fiber.Handler {
	protocols := []string{protocolTransportWS}
	if s.flags.On(featureflags.LegacySubscriptions) {
		protocols = append(protocols, protocolLegacyWS)
	}
	upgrade := websocket.New(s.serveSubscriptions, websocket.Config{Subprotocols: protocols})
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		c.Locals(localsSocketToken, c.Get(auth.HeaderName))
		return upgrade(c)
	}
}

func (s *Server) serveSubscriptions(conn *websocket.Conn) {
	log := s.hub.Logger()
	protocol := conn.Subprotocol()
	if protocol == "" {
		protocol = protocolTransportWS
	}

	ctx, cancel := context.WithCancel(s.shutdownCtx)
	defer cancel()
	if rid, ok := conn.Locals("requestid").(string); ok {
		ctx = observability.WithRequestID(ctx, rid)
	}

	client, err := s.hub.Register(conn)
	if err != nil {
		log.LogError(ctx, err, "register")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		_ = conn.Close()
		return
	}

	token, _ := conn.Locals(localsSocketToken).(string)
	sess := &subscriptionSession{
		ctx:      ctx,
		log:      log,
		client:   client,
		schema:   s.schema,
		protocol: protocol,
		token:    token,
		ops:      make(map[string]context.CancelFunc),
	}
	client.IncomingHandler = sess.handle

	log.LogConnect(ctx, protocol)

	written := make(chan struct{})
	go func() {
		defer close(written)
		client.WritePump()
	}()
	client.ReadPump()

	cancel()
	sess.stopAll()
	client.Close()
	<-written
	log.LogDisconnect(ctx, "connection closed")
}

// subscriptionSession runs the operations of one subscription socket.
type subscriptionSession struct {
	ctx      context.Context
	log      *observability.WSLogger
	client   *notifications.Client
	schema   *graphql.Schema
	protocol string

	mu    sync.Mutex
	token string
	acked bool
	ops   map[string]context.CancelFunc
}

func (s *subscriptionSession) handle(_ *notifications.Client, raw []byte) {
	var msg wsMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.fail(fmt.Errorf("invalid message: %w", err))
		return
	}

	switch msg.Type {
	case msgConnectionInit:
		s.init(msg.Payload)
	case msgPing:
		s.send(wsMessage{Type: msgPong})
	case msgPong, msgKeepAlive:
	case msgSubscribe, msgStart:
		if !s.isAcked() {
			s.fail(errors.New("subscribe before connection_init"))
			return
		}
		var req graphqlRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || msg.ID == "" {
			s.sendErrors(msg.ID, "Invalid subscribe payload")
			return
		}
		s.start(msg.ID, req)
	case msgComplete, msgStop:
		s.stop(msg.ID)
	case msgConnectionTerminate:
		s.client.Close()
	default:
		s.fail(fmt.Errorf("unknown message type %q", msg.Type))
	}
}

// init acknowledges the connection. A token in the payload replaces the one
// sent with the upgrade request.
func (s *subscriptionSession) init(payload json.RawMessage) {
	var params map[string]interface{}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &params)
	}

	s.mu.Lock()
	if token, ok := params[auth.HeaderName].(string); ok && token != "" {
		s.token = token
	}
	s.acked = true
	s.mu.Unlock()

	s.send(wsMessage{Type: msgConnectionAck})
	if s.protocol == protocolLegacyWS {
		s.send(wsMessage{Type: msgKeepAlive})
	}
}

func (s *subscriptionSession) isAcked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acked
}

func (s *subscriptionSession) start(id string, req graphqlRequest) {
	s.mu.Lock()
	if _, exists := s.ops[id]; exists {
		s.mu.Unlock()
		s.sendErrors(id, fmt.Sprintf("Subscriber for %s already exists", id))
		return
	}
	ctx, cancel := context.WithCancel(auth.WithToken(s.ctx, s.token))
	s.ops[id] = cancel
	s.mu.Unlock()

	responses, err := s.schema.Subscribe(ctx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		s.finish(id)
		s.sendErrors(id, err.Error())
		return
	}
	go s.forward(id, responses)
}

// forward relays responses until the operation ends. The response channel is
// always drained so the executor can exit.
func (s *subscriptionSession) forward(id string, responses <-chan interface{}) {
	failed := false
	for r := range responses {
		resp, ok := r.(*graphql.Response)
		if !ok || failed {
			continue
		}
		if resp.Data == nil && len(resp.Errors) > 0 {
			payload, _ := json.Marshal(resp.Errors)
			s.send(wsMessage{ID: id, Type: msgError, Payload: payload})
			failed = true
			continue
		}
		payload, err := json.Marshal(resp)
		if err != nil {
			observability.Logger.ErrorContext(s.ctx, "encode subscription result", "error", err.Error())
			continue
		}
		s.send(wsMessage{ID: id, Type: s.dataType(), Payload: payload})
	}

	if s.finish(id) && !failed {
		s.send(wsMessage{ID: id, Type: msgComplete})
	}
}

// finish forgets id and reports whether it was still running.
func (s *subscriptionSession) finish(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.ops[id]
	if ok {
		cancel()
		delete(s.ops, id)
	}
	return ok
}

// stop ends id on the client's request; no complete message is sent back.
func (s *subscriptionSession) stop(id string) {
	s.finish(id)
}

func (s *subscriptionSession) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.ops {
		cancel()
		delete(s.ops, id)
	}
}

func (s *subscriptionSession) dataType() string {
	if s.protocol == protocolLegacyWS {
		return msgData
	}
	return msgNext
}

func (s *subscriptionSession) sendErrors(id, message string) {
	payload, _ := json.Marshal([]map[string]string{{"message": message}})
	s.send(wsMessage{ID: id, Type: msgError, Payload: payload})
}

func (s *subscriptionSession) send(msg wsMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.client.TrySend(frame)
}

// fail reports a protocol violation and closes the socket.
func (s *subscriptionSession) fail(err error) {
	s.log.LogError(s.ctx, err, "protocol")
	s.client.Close()
}
