package auth

import (
	"net/http"
	"net/url"
	"strings"
)

const authorizationHeader = "Authorization"

// ConnKind distinguishes request/response connections from long-lived
// streams. The distinction drives both exemption checks (HTTP only) and
// token extraction (header vs query string).
type ConnKind int

const (
	KindHTTP ConnKind = iota
	KindStream
)

func (k ConnKind) String() string {
	if k == KindStream {
		return "stream"
	}
	return "http"
}

// Connection abstracts the incoming transport so the Backend stays
// independent of the host server framework. Path and Header are meaningful
// for KindHTTP; Query carries the initial query string for KindStream.
type Connection interface {
	Kind() ConnKind
	Path() string
	Header(name string) string
	Query() url.Values
}

type httpConnection struct {
	r *http.Request
}

// NewConnection adapts an *http.Request. Requests carrying a websocket
// upgrade classify as stream connections; everything else is plain HTTP.
func NewConnection(r *http.Request) Connection {
	return httpConnection{r: r}
}

func (c httpConnection) Kind() ConnKind {
	if strings.EqualFold(c.r.Header.Get("Upgrade"), "websocket") {
		return KindStream
	}
	return KindHTTP
}

func (c httpConnection) Path() string              { return c.r.URL.Path }
func (c httpConnection) Header(name string) string { return c.r.Header.Get(name) }
func (c httpConnection) Query() url.Values         { return c.r.URL.Query() }

// splitSchemeParam splits an Authorization value into scheme and credential
// at the first space. A value with no space yields an empty credential; the
// empty credential flows into validation and fails there rather than
// short-circuiting to a distinct missing-token case.
func splitSchemeParam(value string) (scheme, param string) {
	scheme, param, found := strings.Cut(value, " ")
	if !found {
		return value, ""
	}
	return scheme, param
}

// credentialFrom extracts the raw token for the connection kind: the
// Authorization header for HTTP, the URL-decoded Authorization query key
// for streams (the only delivery channel available at stream open).
func credentialFrom(conn Connection) string {
	var value string
	if conn.Kind() == KindStream {
		value = conn.Query().Get(authorizationHeader)
	} else {
		value = conn.Header(authorizationHeader)
	}
	_, cred := splitSchemeParam(value)
	return cred
}
