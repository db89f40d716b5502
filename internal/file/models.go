package file

import (
	"strings"
	"time"
)

// Status records where a file is in its upload lifecycle. Records are created
// pending; nothing in the service transitions them.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

// DefaultContentType is stored when the client names none.
const DefaultContentType = "application/octet-stream"

// Record is the metadata of one uploaded file, keyed by (OwnerID, FileID).
type Record struct {
	OwnerID     string    `json:"userId" dynamodbav:"userId"`
	FileID      string    `json:"fileId" dynamodbav:"fileId"`
	FileName    string    `json:"fileName" dynamodbav:"fileName"`
	StorageKey  string    `json:"s3Key" dynamodbav:"s3Key"`
	ContentType string    `json:"contentType" dynamodbav:"contentType"`
	Size        *int64    `json:"size,omitempty" dynamodbav:"size,omitempty"`
	Status      Status    `json:"status" dynamodbav:"status"`
	UploadedAt  time.Time `json:"uploadDate" dynamodbav:"uploadDate"`
}

// KeyPrefix is the object-store namespace of one file.
func KeyPrefix(ownerID, fileID string) string {
	return ownerID + "/" + fileID + "/"
}

// StorageKey builds the object key for a file. Path separators in the user
// supplied name are replaced so the key never leaves its namespace.
func StorageKey(ownerID, fileID, fileName string) string {
	return KeyPrefix(ownerID, fileID) + objectName(fileName)
}

func objectName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
