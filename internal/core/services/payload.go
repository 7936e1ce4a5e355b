package services

import (
	"GreenPay/internal/core/domain"
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// webAppPayload is the JSON the Mini App posts through Telegram.sendData.
type webAppPayload struct {
	Photo     *string         `json:"photo"`
	Tree      *string         `json:"tree"`
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

// ParseSubmissionPayload converts the raw Mini App payload into a typed
// SubmissionEvent. Range checks happen later, in Submit.
func ParseSubmissionPayload(submitter domain.Submitter, raw []byte) (domain.SubmissionEvent, error) {
	var p webAppPayload
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.SubmissionEvent{}, domain.NewValidationError(fieldForJSON(typeErr.Field), "wrong type", err)
		}
		return domain.SubmissionEvent{}, domain.NewValidationError(domain.FieldPayload, "not a JSON object", err)
	}
	if dec.More() {
		return domain.SubmissionEvent{}, domain.NewValidationError(domain.FieldPayload, "trailing data after JSON object", nil)
	}

	if p.Photo == nil {
		return domain.SubmissionEvent{}, domain.NewValidationError(domain.FieldPhoto, "missing", nil)
	}
	if p.Tree == nil {
		return domain.SubmissionEvent{}, domain.NewValidationError(domain.FieldSpecies, "missing", nil)
	}
	lat, err := parseCoordinate(domain.FieldLatitude, p.Latitude)
	if err != nil {
		return domain.SubmissionEvent{}, err
	}
	lon, err := parseCoordinate(domain.FieldLongitude, p.Longitude)
	if err != nil {
		return domain.SubmissionEvent{}, err
	}

	return domain.SubmissionEvent{
		Submitter:    submitter,
		Species:      *p.Tree,
		Latitude:     lat,
		Longitude:    lon,
		PhotoPayload: *p.Photo,
	}, nil
}

// parseCoordinate accepts a JSON number or a numeric string. The browser
// geolocation API yields numbers, hand-filled forms yield strings.
func parseCoordinate(field string, raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, domain.NewValidationError(field, "missing", nil)
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, domain.NewValidationError(field, "not a number", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, domain.NewValidationError(field, "not a number", err)
		}
		return v, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, domain.NewValidationError(field, "not a number", err)
	}
	return v, nil
}

func fieldForJSON(name string) string {
	switch name {
	case "photo":
		return domain.FieldPhoto
	case "tree":
		return domain.FieldSpecies
	}
	return domain.FieldPayload
}
