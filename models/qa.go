package models

// QuestionAnswer pairs an input question with its final answer text.
// The question field always carries the original, untranslated question.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// UploadResponse is the body returned by the upload endpoint.
type UploadResponse struct {
	Answers []QuestionAnswer `json:"answers"`
}
