package events

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/model"
)

// TranslationApplier stores a translated title. Implemented by the document service.
type TranslationApplier interface {
	ApplyTranslation(ctx context.Context, id int64, translatedTitle string) (*model.Document, error)
}

// NewTranslationResultHandler consumes TranslationResultEvents and applies them.
// Malformed payloads, unknown documents and blank titles are dropped; other
// failures are redelivered.
func NewTranslationResultHandler(applier TranslationApplier, log *zap.Logger) HandlerFunc {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := DecodeTranslationResult(msg.Payload)
		if err != nil {
			return Permanent(err)
		}
		if _, err := applier.ApplyTranslation(ctx, evt.DocumentID, evt.TranslatedTitle); err != nil {
			if errors.Is(err, apperr.ErrDocumentNotFound) || apperr.KindOf(err) == apperr.KindValidation {
				return Permanent(err)
			}
			return err
		}
		log.Info("translation result applied", zap.Int64("document_id", evt.DocumentID))
		return nil
	}
}
