package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// ErrPayloadDecode is returned when no transport branch yields usable bytes.
var ErrPayloadDecode = errors.New("image payload could not be decoded")

// DecodePayload converts the image_data string of a JSON upload into raw
// bytes. Two encodings are accepted:
//
//   - a data URI ("data:image/...;base64,AAAA"): everything after the first
//     comma is decoded as standard base64;
//   - a plain base64 string.
//
// When allowRaw is set, a plain string that fails base64 decoding is taken as
// the literal payload bytes instead of an error. This mirrors clients that put
// raw image bytes into the JSON string; it has no validation power and can
// corrupt multi-byte text, so it is off unless explicitly enabled.
func DecodePayload(s string, allowRaw bool) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrPayloadDecode)
	}

	if strings.HasPrefix(s, "data:") {
		_, b64, found := strings.Cut(s, ",")
		if !found {
			return nil, fmt.Errorf("%w: data URI without comma separator", ErrPayloadDecode)
		}
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
		}
		return data, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if allowRaw {
			return []byte(s), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
	}
	return data, nil
}

// ReadFilePart reads a multipart file part fully into memory, refusing
// anything past the size ceiling.
func ReadFilePart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open part: %v", ErrPayloadDecode, err)
	}
	defer f.Close()

	// Read one byte past the limit so the validator can report the overflow.
	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read part: %v", ErrPayloadDecode, err)
	}
	return data, nil
}

// ReadRawBody reads an entire request body into memory with the same
// one-past-the-limit cap as ReadFilePart.
func ReadRawBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrPayloadDecode, err)
	}
	return data, nil
}
