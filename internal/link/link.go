package link

import (
	"fmt"
	"net/url"

	"classroom-recorder/internal/model"
	"classroom-recorder/internal/session"

	qrcode "github.com/skip2/go-qrcode"
)

// BuildURL appends the context as query parameters to the student page URL.
func BuildURL(baseURL string, rc model.RecordingContext) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	q := u.Query()
	q.Set(session.KeyPeriod, rc.Period())
	q.Set(session.KeySection, rc.Section())
	q.Set(session.KeyLesson, rc.Lesson())
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// QRCode renders target as a PNG of size×size pixels.
func QRCode(target string, size int) ([]byte, error) {
	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
