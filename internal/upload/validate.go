package upload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"path"
	"regexp"
	"strings"

	// Register decoders so image.DecodeConfig recognizes all supported formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// MaxImageBytes is the upload size ceiling (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

// Validation errors.
var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrInvalidFolder   = errors.New("invalid folder")
	ErrInvalidKey      = errors.New("invalid object key")
	ErrNotImage        = errors.New("payload is not a supported image")
	ErrTooLarge        = errors.New("image exceeds the size limit")
)

// allowedExts are the accepted filename extensions (matched case-insensitively).
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	filenameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	folderRe   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ValidateName checks the filename and folder against the naming rules:
// filename must be non-empty, contain only [A-Za-z0-9._-], and end in an
// allowed image extension; folder must contain only [A-Za-z0-9_-].
func ValidateName(filename, folder string) error {
	if filename == "" || !filenameRe.MatchString(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExts[ext] {
		return fmt.Errorf("%w: extension %q not allowed", ErrInvalidFilename, ext)
	}
	if folder == "" || !folderRe.MatchString(folder) {
		return fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	return nil
}

// ValidateImage confirms data is within the size ceiling and structurally a
// JPEG, PNG, GIF, or WEBP. The check decodes the header and verifies the
// format trailer, catching truncated or corrupt files without decompressing
// the full raster.
func ValidateImage(data []byte) error {
	if len(data) > MaxImageBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxImageBytes)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrNotImage)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	if err := checkTrailer(format, data); err != nil {
		return err
	}
	return nil
}

// checkTrailer verifies the end-of-stream marker for each format. A valid
// header with a missing trailer means the file was cut off mid-transfer.
func checkTrailer(format string, data []byte) error {
	switch format {
	case "jpeg":
		// EOI marker 0xFFD9.
		if len(data) < 4 || !bytes.HasSuffix(data, []byte{0xFF, 0xD9}) {
			return fmt.Errorf("%w: truncated jpeg", ErrNotImage)
		}
	case "png":
		// The IEND chunk is the last 12 bytes of a well-formed PNG.
		if len(data) < 12 || !bytes.Contains(data[len(data)-12:], []byte("IEND")) {
			return fmt.Errorf("%w: truncated png", ErrNotImage)
		}
	case "gif":
		// GIF trailer byte 0x3B.
		if len(data) < 1 || data[len(data)-1] != 0x3B {
			return fmt.Errorf("%w: truncated gif", ErrNotImage)
		}
	case "webp":
		// RIFF length field must cover the whole payload.
		if len(data) < 12 {
			return fmt.Errorf("%w: truncated webp", ErrNotImage)
		}
		riffLen := binary.LittleEndian.Uint32(data[4:8])
		if int(riffLen)+8 > len(data) {
			return fmt.Errorf("%w: truncated webp", ErrNotImage)
		}
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrNotImage, format)
	}
	return nil
}

// IsClientError reports whether err is caused by the request payload rather
// than the storage backend, so handlers can pick between 400 and 500.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFilename) ||
		errors.Is(err, ErrInvalidFolder) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrPayloadDecode) ||
		errors.Is(err, ErrNotImage) ||
		errors.Is(err, ErrTooLarge)
}
