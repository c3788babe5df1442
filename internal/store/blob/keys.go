package blob

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"time"
)

// ObjectKey builds a collision-resistant, owner-namespaced object key:
// {ownerID}/{unixMillis}-{randomHex}{ext}.
func ObjectKey(ownerID, originalName string) string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return fmt.Sprintf("%s/%d-%s%s",
		ownerID, time.Now().UnixMilli(), hex.EncodeToString(buf), path.Ext(originalName))
}

// ProcessedKey derives the key for the processed copy of an original
// object so both sides of a document stay adjacent in the bucket.
func ProcessedKey(originalKey string) string {
	return "processed/" + originalKey
}
