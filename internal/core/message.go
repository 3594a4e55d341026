package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// BuildMIME builds a job's wire message in RFC 5322 format:
// a multipart/mixed envelope with a plain-text body part followed by
// the personalized attachment and any extra attachments, each base64
// encoded with its content type inferred from the filename extension.
func BuildMIME(from Address, job *SendJob) []byte {
	var message strings.Builder

	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	// Headers
	message.WriteString("From: " + from.String() + "\r\n")
	message.WriteString("To: " + job.To + "\r\n")

	if cc := joinAddresses(job.CC); cc != "" {
		message.WriteString("Cc: " + cc + "\r\n")
	}

	// BCC recipients are intentionally absent from the headers; they are
	// carried only in the envelope recipient list.

	message.WriteString("Subject: " + job.Subject + "\r\n")
	message.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n")
	message.WriteString("\r\n")

	// Body part
	message.WriteString("--" + boundary + "\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	message.WriteString("\r\n")
	message.WriteString(job.Body + "\r\n")
	message.WriteString("\r\n")

	// Primary attachment, then the extras
	writeAttachment(&message, boundary, job.Attachment)
	for _, att := range job.ExtraAttachments {
		writeAttachment(&message, boundary, att)
	}

	// End boundary
	message.WriteString("--" + boundary + "--\r\n")

	return []byte(message.String())
}

// writeAttachment appends one base64-encoded attachment part.
func writeAttachment(message *strings.Builder, boundary string, att Attachment) {
	if att.Filename == "" && len(att.Data) == 0 {
		return
	}

	message.WriteString("--" + boundary + "\r\n")
	message.WriteString("Content-Type: " + att.DetectContentType() + "; name=\"" + att.Filename + "\"\r\n")
	message.WriteString("Content-Transfer-Encoding: base64\r\n")
	message.WriteString("Content-Disposition: attachment; filename=\"" + att.Filename + "\"\r\n")
	message.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(att.Data)
	// 76-character lines per RFC 2045.
	for len(encoded) > 76 {
		message.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	if encoded != "" {
		message.WriteString(encoded + "\r\n")
	}
	message.WriteString("\r\n")
}

func joinAddresses(addrs []string) string {
	var valid []string
	for _, a := range addrs {
		if s := strings.TrimSpace(a); s != "" {
			valid = append(valid, s)
		}
	}
	return strings.Join(valid, ", ")
}
