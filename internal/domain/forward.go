package domain

import (
	"net/http"
	"net/url"
)

type ForwardRequest struct {
	Service ServiceName
	Path    string
	Method  string
	Body    Payload
	Query   url.Values
	Header  http.Header
}

// CarriesBody reports whether Body is sent on the wire. GET never carries one.
// DELETE carries one only when the call site supplied it.
func (r ForwardRequest) CarriesBody() bool {
	if r.Body == nil {
		return false
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
