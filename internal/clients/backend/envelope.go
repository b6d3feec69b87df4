package backend

import (
	"bytes"
	"encoding/json"
)

// Envelope is the uniform {success, message?, message_es?, data?} response.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	MessageES string          `json:"message_es,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Text returns the server message, preferring message over message_es and error.
func (e *Envelope) Text() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "":
		return e.Message
	case e.MessageES != "":
		return e.MessageES
	default:
		return e.Error
	}
}

func (e *Envelope) HasData() bool {
	if e == nil {
		return false
	}
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// normalize turns any parsed body into an Envelope. Objects with a "success" key are
// envelopes; any other JSON value is the data of a successful response.
func normalize(raw json.RawMessage) (*Envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &Envelope{Success: true}, nil
	}
	if raw[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, err
		}
		if _, ok := probe["success"]; ok {
			var env Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return nil, err
			}
			return &env, nil
		}
	}
	return &Envelope{Success: true, Data: raw}, nil
}

// Decode unmarshals the envelope data into T. A success: false envelope is an
// *UnsuccessfulError; a missing payload is ErrNoData.
func Decode[T any](env *Envelope) (T, error) {
	var v T
	if env == nil {
		return v, ErrNoData
	}
	if !env.Success {
		return v, &UnsuccessfulError{Message: env.Text()}
	}
	if !env.HasData() {
		return v, ErrNoData
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Check returns an *UnsuccessfulError for a success: false envelope.
func Check(env *Envelope) error {
	if env == nil || env.Success {
		return nil
	}
	return &UnsuccessfulError{Message: env.Text()}
}
