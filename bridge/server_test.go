package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/require"

	"github.com/foundationdevices/passport-ur/common/log"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(log.SetupLogging("test", logging.CRITICAL), nil, nil)
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestBridgeEncodeDecodeRoundTrip(t *testing.T) {
	s := newTestServer(t)

	createRec := doJSON(t, s.handleCreateSession, "POST", "/session", nil)
	require.Equal(t, http.StatusOK, createRec.Code)
	var created createSessionResponse
	require.NoError(t, json.NewDecoder(createRec.Body).Decode(&created))

	startRec := doJSON(t, s.handleStartEncode, "POST", "/session/start", startEncodeRequest{
		SessionID:      created.SessionID,
		URType:         "bytes",
		MessageBase64:  []byte{0x44, 1, 2, 3, 4},
		MaxFragmentLen: 1024,
	})
	require.Equal(t, http.StatusOK, startRec.Code)

	partRec := doJSON(t, s.handleNextPart, "POST", "/session/next-part", nextPartRequest{SessionID: created.SessionID})
	require.Equal(t, http.StatusOK, partRec.Code)
	var part nextPartResponse
	require.NoError(t, json.NewDecoder(partRec.Body).Decode(&part))

	decodeSessRec := doJSON(t, s.handleCreateSession, "POST", "/session", nil)
	var decodeSess createSessionResponse
	require.NoError(t, json.NewDecoder(decodeSessRec.Body).Decode(&decodeSess))

	recvRec := doJSON(t, s.handleReceive, "POST", "/session/receive", receiveRequest{
		SessionID: decodeSess.SessionID,
		Part:      part.Part,
	})
	require.Equal(t, http.StatusOK, recvRec.Code)

	statusRec := httptest.NewRecorder()
	statusReq, err := http.NewRequest("GET", "/session/status?session_id="+decodeSess.SessionID, nil)
	require.NoError(t, err)
	s.handleStatus(statusRec, statusReq)
	var status statusResponse
	require.NoError(t, json.NewDecoder(statusRec.Body).Decode(&status))
	require.True(t, status.IsComplete)

	msgRec := httptest.NewRecorder()
	msgReq, err := http.NewRequest("GET", "/session/message?session_id="+decodeSess.SessionID, nil)
	require.NoError(t, err)
	s.handleMessage(msgRec, msgReq)
	var msg messageResponse
	require.NoError(t, json.NewDecoder(msgRec.Body).Decode(&msg))
	// Message() returns the fountain-assembled payload, which is the
	// registry's CBOR encoding of the value - here the cbor byte-string
	// header plus the four original bytes.
	require.Equal(t, []byte{0x44, 1, 2, 3, 4}, msg.Message)
}

func TestBridgeUnknownSessionReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.handleNextPart, "POST", "/session/next-part", nextPartRequest{SessionID: "does-not-exist"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBridgeCloseRemovesSession(t *testing.T) {
	s := newTestServer(t)
	createRec := doJSON(t, s.handleCreateSession, "POST", "/session", nil)
	var created createSessionResponse
	require.NoError(t, json.NewDecoder(createRec.Body).Decode(&created))

	closeReq, err := http.NewRequest("POST", "/session/close?session_id="+created.SessionID, nil)
	require.NoError(t, err)
	closeRec := httptest.NewRecorder()
	s.handleClose(closeRec, closeReq)
	require.Equal(t, http.StatusOK, closeRec.Code)

	rec := doJSON(t, s.handleNextPart, "POST", "/session/next-part", nextPartRequest{SessionID: created.SessionID})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
