package resource

// Actions understood by the content endpoint.
const (
	ActionList = "resources/list"
	ActionRead = "resources/read"
)

// Request is the body of a content-endpoint call. UserID is only honored on
// the internal function invocation path.
type Request struct {
	Action     string `json:"action"`
	ResourceID string `json:"resource_id,omitempty"`
	UserID     string `json:"userId,omitempty"`
}

// Resource describes one of the caller's files.
type Resource struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// ListResult is the response to resources/list.
type ListResult struct {
	Resources []Resource `json:"resources"`
}

// Encoding tells the reader how Content.Content is encoded.
type Encoding string

const (
	EncodingText   Encoding = "text"
	EncodingBase64 Encoding = "base64"
)

// Content is the response to resources/read.
type Content struct {
	Content  string   `json:"content"`
	FileName string   `json:"fileName"`
	MimeType string   `json:"mimeType"`
	Encoding Encoding `json:"encoding,omitempty"`
}
