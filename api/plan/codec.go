package plan

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// codec encodes and decodes one wire format.
type codec interface {
	ContentType() string
	Decode(r io.Reader, v any) error
	Encode(w io.Writer, v any) error
}

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return contentTypeJSON }

func (jsonCodec) Decode(r io.Reader, v any) error { return json.NewDecoder(r).Decode(v) }

func (jsonCodec) Encode(w io.Writer, v any) error { return json.NewEncoder(w).Encode(v) }

type msgpackCodec struct{}

func (msgpackCodec) ContentType() string { return contentTypeMsgpack }

func (msgpackCodec) Decode(r io.Reader, v any) error { return msgpack.NewDecoder(r).Decode(v) }

func (msgpackCodec) Encode(w io.Writer, v any) error { return msgpack.NewEncoder(w).Encode(v) }

func isMsgpack(mediaType string) bool {
	return mediaType == contentTypeMsgpack || mediaType == "application/x-msgpack"
}

// requestCodec picks the decoder from Content-Type. JSON is the default.
func requestCodec(r *http.Request) codec {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && isMsgpack(mt) {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

// responseCodec picks the encoder from Accept, falling back to the request
// format when Accept is absent or a wildcard.
func responseCodec(r *http.Request) codec {
	accept := r.Header.Get("Accept")
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch {
		case isMsgpack(mt):
			return msgpackCodec{}
		case mt == contentTypeJSON:
			return jsonCodec{}
		}
	}
	return requestCodec(r)
}
