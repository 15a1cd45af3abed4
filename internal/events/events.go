// Package events is the event channel between the document service and the
// translation worker. Messages travel over watermill, either in-process
// (gochannel) or through NATS JetStream.
package events

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"docflow/internal/model"
)

// MetadataPartitionKey carries the document ID. Events of one document share a key
// and are delivered in order on brokers that partition by it.
const MetadataPartitionKey = "partition_key"

// Topics names the two channels of the workflow.
type Topics struct {
	DocumentCreated   string
	TranslationResult string
}

var (
	// ErrSendTimeout is returned when the broker does not confirm a publish in time.
	ErrSendTimeout = errors.New("event send timed out")
	// ErrMalformed marks a payload that cannot be decoded.
	ErrMalformed = errors.New("malformed event payload")
)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth redelivering. Consumers ack such messages.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func partitionKey(documentID int64) string {
	return strconv.FormatInt(documentID, 10)
}

// DecodeDocumentCreated parses a DocumentCreatedEvent payload.
func DecodeDocumentCreated(payload []byte) (model.DocumentCreatedEvent, error) {
	var evt model.DocumentCreatedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if evt.DocumentID <= 0 {
		return evt, fmt.Errorf("%w: documentId is required", ErrMalformed)
	}
	return evt, nil
}

// DecodeTranslationResult parses a TranslationResultEvent payload.
func DecodeTranslationResult(payload []byte) (model.TranslationResultEvent, error) {
	var evt model.TranslationResultEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if evt.DocumentID <= 0 {
		return evt, fmt.Errorf("%w: documentId is required", ErrMalformed)
	}
	return evt, nil
}
