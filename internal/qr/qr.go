// Package qr encodes and decodes shareable request links. The link doubles as
// the QR payload; rendering the actual image is left to the UI layer.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PayloadVersion is the current share-link payload version.
const PayloadVersion = "1.0"

// TypeCollaborative marks a link pointing at a collaborative payment request.
const TypeCollaborative = "collaborative"

// ErrInvalidPayload is returned for malformed share links.
var ErrInvalidPayload = errors.New("invalid QR payload")

// Payload is the metadata embedded in a share link. RequestID is taken from
// the link's path segment, which is authoritative; the encoded copy is
// informational only and carries no access-control weight.
type Payload struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

// ShareLink builds the shareable URL for a request:
// {origin}/request/{id}?qr=1&data={base64 JSON payload}.
func ShareLink(origin, requestID string) string {
	payload := Payload{
		Type:      TypeCollaborative,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Version:   PayloadVersion,
	}
	raw, _ := json.Marshal(payload)
	encoded := base64.StdEncoding.EncodeToString(raw)
	return fmt.Sprintf("%s/request/%s?qr=1&data=%s",
		strings.TrimRight(origin, "/"), url.PathEscape(requestID), url.QueryEscape(encoded))
}

// ParseShareLink decodes a share link. The returned payload's RequestID is
// the path segment; a mismatching encoded id is ignored in its favor.
func ParseShareLink(raw string) (*Payload, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] != "request" || segments[len(segments)-1] == "" {
		return nil, fmt.Errorf("%w: missing request path", ErrInvalidPayload)
	}
	requestID := segments[len(segments)-1]

	data := u.Query().Get("data")
	if data == "" {
		return nil, fmt.Errorf("%w: missing data parameter", ErrInvalidPayload)
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var payload Payload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	payload.RequestID = requestID
	return &payload, nil
}
