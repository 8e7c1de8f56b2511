package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is the decoded failure body of a gateway call. It keeps the remote
// status/code/message so logs can show what the hosted backend actually said.
type Error struct {
	Operation string
	Status    int
	Code      string
	Message   string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway %s: status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("gateway %s: status %d: %s", e.Operation, e.Status, e.Message)
}

// HTTPStatus returns the remote HTTP status.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// GatewayCode returns the remote error code when the body carried one.
func (e *Error) GatewayCode() string {
	return e.Code
}

// GatewayMessage returns the remote error message.
func (e *Error) GatewayMessage() string {
	return e.Message
}

// errorBody covers both dialects of the gateway's failure payloads: the data
// API answers {code,message,details,hint}, the auth API answers either
// {error,error_description} or {code,msg}.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
	ErrorField       string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func parseError(op string, status int, raw []byte) *Error {
	e := &Error{Operation: op, Status: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		return e
	}
	if len(body.Code) > 0 {
		// code is a string for the data API and a number for the auth API.
		var s string
		if err := json.Unmarshal(body.Code, &s); err == nil {
			e.Code = s
		} else {
			e.Code = strings.Trim(string(body.Code), `"`)
		}
	}
	switch {
	case body.Message != "":
		e.Message = body.Message
	case body.Msg != "":
		e.Message = body.Msg
	case body.ErrorDescription != "":
		e.Message = body.ErrorDescription
	case body.ErrorField != "":
		e.Message = body.ErrorField
	default:
		e.Message = strings.TrimSpace(string(raw))
	}
	if body.Details != "" {
		e.Message = fmt.Sprintf("%s (%s)", e.Message, body.Details)
	}
	return e
}
