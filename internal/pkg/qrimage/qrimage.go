package qrimage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the document encoded into the QR image. The code is an
// opaque random identifier; the payload carries no secret.
type Payload struct {
	Code        string `json:"code"`
	SessionType string `json:"session_type"`
}

// DataURL renders the payload as a 256px PNG and returns it as a
// base64 data URL suitable for embedding in an <img> tag.
func DataURL(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal QR payload: %w", err)
	}

	png, err := qrcode.Encode(string(raw), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Decode parses scanned QR content back into a payload.
func Decode(content string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return Payload{}, fmt.Errorf("invalid QR payload: %w", err)
	}
	return p, nil
}
