package provider

// ContentTypeKey is the header name every rendered request carries.
const ContentTypeKey = "Content-Type"

// ContentType enumerates the supported request body encodings.
type ContentType int

const (
	JSON ContentType = iota
	FormURLEncoded
	PlainText
	XML
)

// Key returns the header name for the content type.
func (ContentType) Key() string {
	return ContentTypeKey
}

// Value returns the canonical MIME string sent in the Content-Type header.
func (ct ContentType) Value() string {
	switch ct {
	case FormURLEncoded:
		return "application/x-www-form-urlencoded"
	case PlainText:
		return "text/plain; charset=utf-8"
	case XML:
		return "application/xml; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

func (ct ContentType) String() string {
	return ct.Value()
}
