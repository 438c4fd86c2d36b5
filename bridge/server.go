package bridge

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/op/go-logging"

	"github.com/foundationdevices/passport-ur/common/persistance"
	"github.com/foundationdevices/passport-ur/registry"
	"github.com/foundationdevices/passport-ur/urerr"
)

// Server is the bridge's HTTP control plane, generalized from the
// teacher's ControlServer: one process-wide mux, JSON in and out, errors
// logged and turned into a status code rather than propagated raw.
type Server struct {
	sessions *SessionManager
	cache    persistance.MessageCache
	relay    *Relay
	log      *logging.Logger
}

// NewServer constructs a bridge server. cache and relay may be nil: cache
// absent means completed messages live only in memory for the lifetime of
// their session, relay absent means no SNS fan-out on completion.
func NewServer(log *logging.Logger, cache persistance.MessageCache, relay *Relay) (*Server, error) {
	sessions, err := NewSessionManager()
	if err != nil {
		return nil, err
	}
	return &Server{sessions: sessions, cache: cache, relay: relay, log: log}, nil
}

// HandleBridgeHTTP serves the control API on listener until it closes.
func (s *Server) HandleBridgeHTTP(listener net.Listener) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/session", s.handleCreateSession)
	mux.HandleFunc("/session/start", s.handleStartEncode)
	mux.HandleFunc("/session/next-part", s.handleNextPart)
	mux.HandleFunc("/session/receive", s.handleReceive)
	mux.HandleFunc("/session/status", s.handleStatus)
	mux.HandleFunc("/session/message", s.handleMessage)
	mux.HandleFunc("/session/close", s.handleClose)
	return http.Serve(listener, mux)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.writeJSON(w, createSessionResponse{SessionID: sess.ID})
}

type startEncodeRequest struct {
	SessionID      string `json:"session_id"`
	URType         string `json:"ur_type"`
	MessageBase64  []byte `json:"message"`
	MaxFragmentLen uint32 `json:"max_fragment_len"`
}

// handleStartEncode latches a message onto a session's encoder half, the
// bridge-level equivalent of the teacher's handlePutPair initiating a
// fresh exchange.
func (s *Server) handleStartEncode(w http.ResponseWriter, r *http.Request) {
	var req startEncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(req.SessionID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sess.lock()
	defer sess.unlock()
	v, err := registry.FromUR(req.URType, req.MessageBase64)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.Encoder.Start(req.URType, v, req.MaxFragmentLen); err != nil {
		s.writeError(w, err)
		return
	}
	sess.URType = req.URType
	w.WriteHeader(http.StatusOK)
}

type nextPartRequest struct {
	SessionID string `json:"session_id"`
}

type nextPartResponse struct {
	Part string `json:"part"`
}

func (s *Server) handleNextPart(w http.ResponseWriter, r *http.Request) {
	var req nextPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(req.SessionID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sess.lock()
	defer sess.unlock()
	part, err := sess.Encoder.NextPart()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, nextPartResponse{Part: part})
}

type receiveRequest struct {
	SessionID string `json:"session_id"`
	Part      string `json:"part"`
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	var req receiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(req.SessionID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sess.lock()
	if err := sess.Decoder.Receive(req.Part); err != nil {
		sess.unlock()
		s.writeError(w, err)
		return
	}
	complete := sess.Decoder.IsComplete()
	sess.unlock()

	if complete {
		s.onMessageComplete(sess)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) onMessageComplete(sess *deviceSession) {
	sess.lock()
	message, ok := sess.Decoder.Message()
	urType, _ := sess.Decoder.URType()
	sess.unlock()
	if !ok {
		return
	}
	if s.cache != nil {
		if err := s.cache.Put(persistance.CachedMessage{SessionID: sess.ID, URType: urType, Message: message}); err != nil {
			s.log.Error("failed to persist completed message:", err.Error())
		}
	}
	if s.relay != nil {
		if err := s.relay.NotifyMessageAvailable(sess.ID, urType); err != nil {
			s.log.Error("failed to publish sns relay notification:", err.Error())
		}
	}
}

type statusResponse struct {
	IsComplete              bool    `json:"is_complete"`
	IsEmpty                 bool    `json:"is_empty"`
	EstimatedPercentComplete float64 `json:"estimated_percent_complete"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	sess.lock()
	defer sess.unlock()
	s.writeJSON(w, statusResponse{
		IsComplete:               sess.Decoder.IsComplete(),
		IsEmpty:                  sess.Decoder.IsEmpty(),
		EstimatedPercentComplete: sess.Decoder.EstimatedPercentComplete(),
	})
}

type messageResponse struct {
	URType  string `json:"ur_type"`
	Message []byte `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	sess.lock()
	message, ok := sess.Decoder.Message()
	urType, _ := sess.Decoder.URType()
	sess.unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.writeJSON(w, messageResponse{URType: urType, Message: message})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response:", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.log.Error("bridge request error:", err.Error())
	if kind, ok := urerr.KindOf(err); ok && kind == urerr.Unsupported {
		w.WriteHeader(http.StatusNotFound)
	} else {
		w.WriteHeader(http.StatusBadRequest)
	}
	w.Write([]byte(err.Error()))
}
