// Package photo turns inline images sent by the Mini App into raw bytes.
package photo

import (
	"encoding/base64"
	"fmt"
	"strings"

	"GreenPay/internal/core/domain"
)

// DataURLMarker separates the media-type prefix of a data URL from its
// base64 body: "data:image/jpeg;base64,<body>".
const DataURLMarker = ";base64,"

// MaxBytes is the largest photo Telegram accepts for an upload.
const MaxBytes = 10 << 20

// Decode strips prefixMarker (and everything before it) when present and
// decodes the remaining base64 text. Every failure wraps
// domain.ErrMalformedPayload.
func Decode(payload, prefixMarker string) ([]byte, error) {
	body := strings.TrimSpace(payload)
	if body == "" {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrMalformedPayload)
	}

	if prefixMarker != "" {
		if _, rest, found := strings.Cut(body, prefixMarker); found {
			body = rest
		} else if strings.HasPrefix(body, "data:") {
			return nil, fmt.Errorf("%w: data URL without %q marker", domain.ErrMalformedPayload, prefixMarker)
		}
	}

	if body == "" {
		return nil, fmt.Errorf("%w: empty image body", domain.ErrMalformedPayload)
	}

	// Browsers emit padded base64, some clients strip the padding.
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(body)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: decoded image is empty", domain.ErrMalformedPayload)
	}
	if len(raw) > MaxBytes {
		return nil, fmt.Errorf("%w: image is %d bytes, limit is %d", domain.ErrMalformedPayload, len(raw), MaxBytes)
	}
	return raw, nil
}
