package model

// DocumentCreatedEvent is published once per created document.
type DocumentCreatedEvent struct {
	DocumentID int64  `json:"documentId"`
	TitleEn    string `json:"titleEn"`
}

// TranslationResultEvent carries the translated title of a document.
type TranslationResultEvent struct {
	DocumentID      int64  `json:"documentId"`
	TranslatedTitle string `json:"translatedTitle"`
}
