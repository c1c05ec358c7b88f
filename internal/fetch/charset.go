package fetch

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// DecodeBody converts a response body to UTF-8 using the charset named in
// the Content-Type header. UTF-8 bodies, unknown charsets, and decode
// failures pass the bytes through unchanged.
func DecodeBody(body []byte, contentType string) []byte {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	name := params["charset"]
	if name == "" || strings.EqualFold(name, "utf-8") {
		return body
	}

	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}
