// Package response builds the fixed HTTP reply written to every client.
package response

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultContentType = "text/plain"
	DefaultMessage     = "Hello from Drift on ARM64!"
)

// Build renders a complete HTTP/1.1 200 response whose body is message
// followed by a single LF. The result never changes after startup.
func Build(contentType, message string) ([]byte, error) {
	if contentType == "" {
		return nil, fmt.Errorf("response content type must not be empty")
	}
	if strings.ContainsAny(contentType, "\r\n") {
		return nil, fmt.Errorf("response content type %q contains a line break", contentType)
	}

	body := message + "\n"

	var b strings.Builder
	b.WriteString("HTTP/1.1 200 OK\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String()), nil
}

// Default returns a fresh copy of the reference build's payload.
func Default() []byte {
	payload, _ := Build(DefaultContentType, DefaultMessage)
	return payload
}
