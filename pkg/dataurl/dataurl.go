// Package dataurl encodes and decodes base64 data URIs of the form
// data:<mime>;base64,<payload>.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	scheme = "data:"
	marker = ";base64,"
)

// Encode wraps raw bytes into a data URI with the given MIME type.
func Encode(mime string, data []byte) string {
	return scheme + mime + marker + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a data URI into its MIME type and decoded bytes. A URI whose
// payload decodes to zero bytes is rejected.
func Decode(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", nil, errors.New("dataurl: missing data scheme")
	}
	rest := uri[len(scheme):]
	idx := strings.Index(rest, marker)
	if idx < 0 {
		return "", nil, errors.New("dataurl: missing base64 marker")
	}
	mime := rest[:idx]
	data, err := base64.StdEncoding.DecodeString(rest[idx+len(marker):])
	if err != nil {
		return "", nil, fmt.Errorf("dataurl: decode payload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, errors.New("dataurl: empty payload")
	}
	return mime, data, nil
}
