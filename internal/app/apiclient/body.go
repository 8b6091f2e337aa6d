package apiclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// Body is a request payload together with its declared content type.
type Body interface {
	ContentType() string
	reader() (io.Reader, error)
}

type formBody struct {
	values url.Values
}

// Form encodes values as application/x-www-form-urlencoded.
func Form(values url.Values) Body {
	return formBody{values: values}
}

// EmptyForm declares a form content type without sending any fields.
func EmptyForm() Body {
	return formBody{}
}

func (b formBody) ContentType() string { return ContentTypeForm }

func (b formBody) reader() (io.Reader, error) {
	if b.values == nil {
		return nil, nil
	}
	return strings.NewReader(b.values.Encode()), nil
}

type jsonBody struct {
	value any
}

// JSON marshals v as the request body.
func JSON(v any) Body {
	return jsonBody{value: v}
}

func (b jsonBody) ContentType() string { return ContentTypeJSON }

func (b jsonBody) reader() (io.Reader, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, errors.Wrap(err, "encoding JSON body")
	}
	return bytes.NewReader(data), nil
}

type noBody struct{}

// NoBody sends neither a payload nor a content type.
func NoBody() Body {
	return noBody{}
}

func (noBody) ContentType() string        { return "" }
func (noBody) reader() (io.Reader, error) { return nil, nil }
