package objectstore

import (
	"encoding/base64"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const defaultContentType = "application/octet-stream"

// Document formats are never rendered as text, whatever their declared type.
var documentExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".rtf":  {},
}

var textContentTypePrefixes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/javascript",
	"application/x-python",
	"application/x-java-source",
	"application/x-csrc",
}

var textExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {}, ".html": {},
	".css": {}, ".scss": {}, ".json": {}, ".xml": {}, ".csv": {}, ".log": {}, ".ini": {},
	".conf": {}, ".cfg": {}, ".yml": {}, ".yaml": {}, ".sql": {}, ".py": {}, ".java": {},
	".cpp": {}, ".c": {}, ".h": {}, ".php": {}, ".rb": {}, ".go": {}, ".rs": {},
	".swift": {}, ".sh": {}, ".bash": {}, ".zsh": {}, ".fish": {}, ".bat": {}, ".cmd": {},
	".ps1": {},
}

var contentTypesByExtension = map[string]string{
	".txt":   "text/plain",
	".md":    "text/markdown",
	".js":    "application/javascript",
	".jsx":   "application/javascript",
	".ts":    "application/typescript",
	".tsx":   "application/typescript",
	".html":  "text/html",
	".css":   "text/css",
	".scss":  "text/x-scss",
	".json":  "application/json",
	".xml":   "application/xml",
	".csv":   "text/csv",
	".log":   "text/plain",
	".ini":   "text/plain",
	".conf":  "text/plain",
	".cfg":   "text/plain",
	".yml":   "text/yaml",
	".yaml":  "text/yaml",
	".sql":   "application/sql",
	".py":    "text/x-python",
	".java":  "text/x-java-source",
	".cpp":   "text/x-c++src",
	".c":     "text/x-csrc",
	".h":     "text/x-chdr",
	".php":   "application/x-php",
	".rb":    "text/x-ruby",
	".go":    "text/x-go",
	".rs":    "text/x-rust",
	".swift": "text/x-swift",
	".pdf":   "application/pdf",
	".doc":   "application/msword",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".rtf":   "application/rtf",
}

func extension(key string) string {
	return strings.ToLower(path.Ext(key))
}

// IsTextFile classifies an object for inline viewing. Document extensions are
// always binary; otherwise a text-ish content type wins, then the extension list.
func IsTextFile(contentType, key string) bool {
	ext := extension(key)
	if _, doc := documentExtensions[ext]; doc {
		return false
	}

	if contentType != "" {
		for _, prefix := range textContentTypePrefixes {
			if strings.HasPrefix(contentType, prefix) {
				return true
			}
		}
	}

	_, ok := textExtensions[ext]
	return ok
}

// ContentTypeFromKey infers a MIME type from the key's extension.
func ContentTypeFromKey(key string) string {
	if ct, ok := contentTypesByExtension[extension(key)]; ok {
		return ct
	}
	return defaultContentType
}

// decodeText tries UTF-8, then ISO-8859-1, and finally gives up with base64.
// The base64 fallback still counts as text for the caller.
func decodeText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body); err == nil {
		return string(decoded)
	}
	return base64.StdEncoding.EncodeToString(body)
}
