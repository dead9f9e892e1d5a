package services

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"unicode/utf16"

	"github.com/ledongthuc/pdf"
	"github.com/richardlehane/mscfb"
)

// ErrUnsupportedFormat is returned for file extensions the extractor does not
// recognize. The upload handler turns it into the structured error response.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ExtractText converts an uploaded document into plain text based on its file
// extension (leading dot, matched case-insensitively). All parsers work off
// the in-memory bytes; nothing is written to disk.
func ExtractText(data []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".eml":
		return extractEML(data)
	case ".msg":
		return extractMSG(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

// extractPDF concatenates per-page text in page order.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// extractDOCX pulls paragraph text out of word/document.xml, paragraphs
// separated by newlines.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	var paragraphs []string
	var current strings.Builder
	inText := false

	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}

// extractEML walks MIME parts in order and returns the first non-empty
// decoded payload, tolerating invalid bytes. Empty string when no part has a
// payload.
func extractEML(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse eml: %w", err)
	}
	text := firstPayload(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	return text, nil
}

func firstPayload(contentType, encoding string, body io.Reader) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return ""
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return ""
			}
			text := firstPayload(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if text != "" {
				return text
			}
		}
	}

	return decodePayload(encoding, body)
}

func decodePayload(encoding string, r io.Reader) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	// Read what decodes; a trailing decode error still yields the valid prefix
	data, _ := io.ReadAll(r)
	return strings.ToValidUTF8(string(data), "")
}

// MAPI property streams holding the message body in an Outlook .msg compound
// file: PidTagBody as UTF-16LE and as the codepage string variant.
const (
	msgBodyUnicodeStream = "__substg1.0_1000001F"
	msgBodyANSIStream    = "__substg1.0_1000001E"
)

// extractMSG returns the body text of an Outlook message, or empty string if
// the body streams are absent.
func extractMSG(data []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse msg: %w", err)
	}

	var unicodeBody, ansiBody []byte
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		// Top-level streams only; attachments and recipients nest deeper
		if len(entry.Path) > 0 {
			continue
		}
		switch entry.Name {
		case msgBodyUnicodeStream:
			unicodeBody, _ = io.ReadAll(entry)
		case msgBodyANSIStream:
			ansiBody, _ = io.ReadAll(entry)
		}
	}

	if len(unicodeBody) > 0 {
		return strings.TrimRight(decodeUTF16LE(unicodeBody), "\x00"), nil
	}
	if len(ansiBody) > 0 {
		return strings.TrimRight(string(ansiBody), "\x00"), nil
	}
	return "", nil
}

func decodeUTF16LE(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return string(utf16.Decode(u))
}
