package model

// Attachment is a named binary resource owned by exactly one aggregate.
// Name is "{AttachmentID}-{original file name}" and doubles as the blob key suffix.
type Attachment struct {
	AttachmentID string `json:"attachment_id"`
	Name         string `json:"name"`
	BlobType     string `json:"blob_type"`
}
