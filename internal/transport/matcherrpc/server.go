package matcherrpc

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"matchcore/internal/pipeline"
)

// Server adapts a *pipeline.Pipeline to the hand-written Stream RPC.
// Each call to Stream is one client connection for its whole
// lifetime, matching spec.md §4.4's "accept -> register reply sink ->
// ... -> deregister on close" connection lifecycle.
type Server struct {
	pipe *pipeline.Pipeline
	log  *zap.Logger
}

// NewServer returns a Server dispatching every connection's inbound
// messages to pipe.
func NewServer(pipe *pipeline.Pipeline, log *zap.Logger) *Server {
	return &Server{pipe: pipe, log: log}
}

// Stream implements streamServer. It reads {type, payload} envelopes
// off the client stream until EOF or an error, forwarding them to the
// pipeline; concurrently it drains the connection's reply sink
// (cancel_reject) back onto the same stream. A state request's
// response is written synchronously from the receive loop itself,
// since spec.md §4.4 treats it as a direct reply rather than an
// asynchronous one.
func (s *Server) Stream(stream grpc.ServerStream) error {
	connID := uuid.New().String()
	replies := s.pipe.Replies().Register(connID)
	defer s.pipe.Replies().Deregister(connID)

	var sendMu sync.Mutex
	send := func(msgType, targetID string, ts time.Time, payload any) {
		env, err := encodeEnvelope(msgType, targetID, ts, payload)
		if err != nil {
			s.log.Warn("matcherrpc: encode outbound envelope failed", zap.String("type", msgType), zap.Error(err))
			return
		}
		sendMu.Lock()
		defer sendMu.Unlock()
		if err := stream.SendMsg(env); err != nil {
			s.log.Warn("matcherrpc: send failed", zap.String("conn", connID), zap.Error(err))
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case r, ok := <-replies:
				if !ok {
					return
				}
				send(r.Type, r.TargetID, r.Time, r.Payload)
			case <-done:
				return
			}
		}
	}()

	for {
		var env structpb.Struct
		if err := stream.RecvMsg(&env); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		msgType, payload, err := decodeEnvelope(&env)
		if err != nil {
			s.log.Warn("matcherrpc: malformed envelope", zap.String("conn", connID), zap.Error(err))
			continue
		}

		switch msgType {
		case "order":
			if err := s.pipe.HandleOrder(connID, decodeOrderPayload(payload)); err != nil {
				return err
			}
		case "cancel":
			if err := s.pipe.HandleCancel(connID, decodeCancelPayload(payload)); err != nil {
				return err
			}
		case "state":
			state, err := s.pipe.HandleState(connID)
			if err != nil {
				return err
			}
			send("state", "", time.Time{}, state)
		default:
			s.pipe.HandleOther(connID, msgType)
		}
	}
}
