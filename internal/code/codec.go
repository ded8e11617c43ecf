package code

import (
	"encoding/base64"
)

// WireText is text in the transport encoding the execution service expects
// when base64_encoded=true is set. A nil *WireText is a field the service
// omitted or sent as JSON null.
type WireText string

// Encode converts arbitrary text into its wire form. The text is taken as
// raw bytes, so multi-byte and control characters survive unchanged.
func Encode(text string) WireText {
	return WireText(base64.StdEncoding.EncodeToString([]byte(text)))
}

// Decode is the inverse of Encode. When w is nil the field was absent and
// Decode returns ok=false with no error. Judge0 wraps its base64 output at
// 60 columns; the embedded line breaks are ignored by the decoder.
func Decode(field string, w *WireText) (text string, ok bool, err error) {
	if w == nil {
		return "", false, nil
	}
	b, err := base64.StdEncoding.DecodeString(string(*w))
	if err != nil {
		return "", false, &CodecError{Field: field, Err: err}
	}
	return string(b), true, nil
}

// Wire is a convenience for building a *WireText from plain text.
func Wire(text string) *WireText {
	w := Encode(text)
	return &w
}
