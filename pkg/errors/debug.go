package errors

import (
	"errors"
	"fmt"
)

// gatewayError is the surface the remote gateway's error type exposes; kept
// as an interface so this package does not import pkg/gateway.
type gatewayError interface {
	error
	HTTPStatus() int
	GatewayCode() string
	GatewayMessage() string
}

// ErrorDump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	GatewayStatus  int    `json:"gateway_status,omitempty"`
	GatewayCode    string `json:"gateway_code,omitempty"`
	GatewayMessage string `json:"gateway_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var ge gatewayError
	if errors.As(err, &ge) {
		d.GatewayStatus = ge.HTTPStatus()
		d.GatewayCode = ge.GatewayCode()
		d.GatewayMessage = ge.GatewayMessage()
	}

	return d
}
