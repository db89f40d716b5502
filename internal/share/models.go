package share

import "time"

// Record is one share capability. File fields are copied in at issuance so
// resolution never reads the metadata store.
type Record struct {
	Token      string    `json:"shareToken" dynamodbav:"shareToken"`
	FileID     string    `json:"fileId" dynamodbav:"fileId"`
	OwnerID    string    `json:"userId" dynamodbav:"userId"`
	StorageKey string    `json:"s3Key" dynamodbav:"s3Key"`
	FileName   string    `json:"fileName" dynamodbav:"fileName"`
	CreatedAt  time.Time `json:"createdAt" dynamodbav:"createdAt"`
	// ExpiresAt is absolute epoch seconds, the unit DynamoDB TTL expects.
	ExpiresAt int64 `json:"expiresAt" dynamodbav:"expiresAt"`
}

// Expired reports whether the record is no longer resolvable at now.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}

// Link is what the issuer hands back to the file owner.
type Link struct {
	URL       string
	Token     string
	ExpiresAt time.Time
	Hours     int
}

// Resolution is what an anonymous token holder receives.
type Resolution struct {
	FileName    string
	DownloadURL string
	ExpiresAt   int64
}
