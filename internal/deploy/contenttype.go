package deploy

import (
	"mime"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

// ContentTypeFor maps a file name to a media type by extension, without
// parameters such as charset. It returns "" when the extension is unknown.
func ContentTypeFor(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return bareMediaType(mime.TypeByExtension(ext))
}

// sniffContentType detects a media type from the content itself.
func sniffContentType(data []byte) string {
	return bareMediaType(mimetype.Detect(data).String())
}

func bareMediaType(value string) string {
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return value
	}
	return mediaType
}
