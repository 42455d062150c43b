package imaging

import (
	"fmt"
	"strings"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

// Upload is an image as received from a client or fetched from storage,
// labelled with the MIME type the sender declared.
type Upload struct {
	Data     []byte
	MIME     string
	Filename string
}

// NormalizedImage is an Upload whose MIME type is accepted by every backend.
type NormalizedImage struct {
	Data     []byte
	MIME     string
	Filename string
}

var acceptedExtensions = map[string]string{
	MIMEJPEG: ".jpg",
	MIMEPNG:  ".png",
	MIMEWebP: ".webp",
}

// NormalizeUpload passes jpeg/png/webp uploads through with a matching
// filename and transcodes anything else to PNG. The returned bytes never alias
// the upload's buffer.
func NormalizeUpload(u Upload) (NormalizedImage, error) {
	mime := canonicalMIME(u.MIME)
	if ext, ok := acceptedExtensions[mime]; ok {
		return NormalizedImage{
			Data:     append([]byte(nil), u.Data...),
			MIME:     mime,
			Filename: "input" + ext,
		}, nil
	}

	img, _, err := Decode(u.Data)
	if err != nil {
		return NormalizedImage{}, fmt.Errorf("%w: declared %q: %v", domain.ErrUnsupportedImageFormat, u.MIME, err)
	}
	data, err := EncodePNG(img)
	if err != nil {
		return NormalizedImage{}, fmt.Errorf("%w: encode png: %v", domain.ErrUnsupportedImageFormat, err)
	}
	return NormalizedImage{Data: data, MIME: MIMEPNG, Filename: "input.png"}, nil
}

func canonicalMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
