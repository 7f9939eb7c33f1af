package events

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// TopicDocumentStored carries a DocumentStored payload per successful upload.
const TopicDocumentStored = "document.stored"

// DocumentStored is published after a source file has been persisted and
// indexed. Consumers handle best-effort post-ingest work (index warm-up and
// audit logging).
type DocumentStored struct {
	SHA256     string `json:"sha256"`
	StoredPath string `json:"stored_path"` // absolute path of the original
	DerivedDir string `json:"derived_dir"` // uploads/{date}/{sha}
	Ext        string `json:"ext"`
}

func (e *DocumentStored) ToMessage() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return message.NewMessage(uuid.NewString(), payload), nil
}

func DocumentStoredFromMessage(msg *message.Message) (*DocumentStored, error) {
	var e DocumentStored
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
