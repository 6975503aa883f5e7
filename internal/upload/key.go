// Package upload implements the image ingestion pipeline: normalizing the
// incoming payload, validating it as a raster image, generating a storage key,
// and handing the bytes off to object storage.
package upload

import (
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// GenerateKey composes the object key for an upload:
// folder/YYYY/MM/DD/<32 hex chars><ext>. The date partition uses UTC and the
// id carries the full 128 bits of a random UUID, so keys never collide in
// practice and no retry-on-collision is needed.
func GenerateKey(filename, folder string) string {
	return generateKeyAt(filename, folder, time.Now().UTC())
}

func generateKeyAt(filename, folder string, now time.Time) string {
	ext := path.Ext(filename)
	id := uuid.New()
	return fmt.Sprintf("%s/%s/%s%s",
		folder,
		now.Format("2006/01/02"),
		hex.EncodeToString(id[:]),
		ext,
	)
}
