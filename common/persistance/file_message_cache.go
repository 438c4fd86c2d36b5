package persistance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileMessageCache is a MessageCache backed by one JSON file per session
// inside a directory, the same one-file-per-record shape the teacher's
// pairing persister used for pairing.json.
type FileMessageCache struct {
	Dir string
}

func (c FileMessageCache) path(sessionID string) string {
	return filepath.Join(c.Dir, sessionID+".json")
}

func (c FileMessageCache) Put(msg CachedMessage) error {
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return err
	}
	data, err := json.Marshal(persistedMessage{
		URType:     msg.URType,
		Message:    msg.Message,
		ReceivedAt: msg.ReceivedAt,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(msg.SessionID), data, 0600)
}

func (c FileMessageCache) Get(sessionID string) (CachedMessage, bool, error) {
	data, err := os.ReadFile(c.path(sessionID))
	if os.IsNotExist(err) {
		return CachedMessage{}, false, nil
	}
	if err != nil {
		return CachedMessage{}, false, err
	}
	var pm persistedMessage
	if err := json.Unmarshal(data, &pm); err != nil {
		return CachedMessage{}, false, err
	}
	return CachedMessage{
		SessionID:  sessionID,
		URType:     pm.URType,
		Message:    pm.Message,
		ReceivedAt: pm.ReceivedAt,
	}, true, nil
}

func (c FileMessageCache) Delete(sessionID string) error {
	err := os.Remove(c.path(sessionID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

type persistedMessage struct {
	URType     string
	Message    []byte
	ReceivedAt time.Time
}
