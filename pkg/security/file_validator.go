package security

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Lowercase file extension
	DetectedMIME string // MIME type sniffed from the content
	Error        string // User-facing message if validation failed
}

// Content types accepted for each resume extension. The sniffed type or one of
// its parents must be listed.
var resumeTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".txt":  {"text/plain"},
}

// ValidateResume performs 3-layer validation of an uploaded resume:
// 1. Extension whitelist (.pdf .doc .docx .txt)
// 2. Size limit
// 3. Content sniffing (content must match the extension)
func ValidateResume(filename string, data []byte, maxBytes int64) FileValidationResult {
	ext := strings.ToLower(filepath.Ext(filename))
	result := FileValidationResult{Extension: ext}

	// Layer 1: Extension whitelist
	accepted, ok := resumeTypes[ext]
	if !ok {
		result.Error = "Please select a valid file type (PDF, DOC, DOCX, or TXT)"
		return result
	}

	// Layer 2: Size
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		result.Error = "File size must be less than " + formatSize(maxBytes)
		return result
	}
	if len(data) == 0 {
		result.Error = "Resume file is empty"
		return result
	}

	// Layer 3: Content sniffing
	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	for m := detected; m != nil; m = m.Parent() {
		if slices.ContainsFunc(accepted, m.Is) {
			result.Valid = true
			return result
		}
	}
	result.Error = "File content does not match its extension"
	return result
}

// AllowedResumeExtensions returns the accepted extensions, sorted
func AllowedResumeExtensions() []string {
	extensions := make([]string, 0, len(resumeTypes))
	for ext := range resumeTypes {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
