package fieldtype

import (
	"fmt"
	"path"
	"strings"
)

// Extension is an accepted file extension, lower-case without the dot.
type Extension string

const (
	ExtPDF  Extension = "pdf"
	ExtDOC  Extension = "doc"
	ExtDOCX Extension = "docx"
	ExtXLS  Extension = "xls"
	ExtXLSX Extension = "xlsx"
	ExtPPT  Extension = "ppt"
	ExtPPTX Extension = "pptx"
	ExtCSV  Extension = "csv"
	ExtTXT  Extension = "txt"
	ExtRTF  Extension = "rtf"
	ExtODT  Extension = "odt"
	ExtZIP  Extension = "zip"
	ExtPNG  Extension = "png"
	ExtJPG  Extension = "jpg"
	ExtJPEG Extension = "jpeg"
	ExtGIF  Extension = "gif"
	ExtWEBP Extension = "webp"
	ExtSVG  Extension = "svg"
	ExtBMP  Extension = "bmp"
	ExtHEIC Extension = "heic"
)

var extensions = map[Extension]bool{
	ExtPDF: false, ExtDOC: false, ExtDOCX: false, ExtXLS: false, ExtXLSX: false,
	ExtPPT: false, ExtPPTX: false, ExtCSV: false, ExtTXT: false, ExtRTF: false,
	ExtODT: false, ExtZIP: false,
	ExtPNG: true, ExtJPG: true, ExtJPEG: true, ExtGIF: true, ExtWEBP: true,
	ExtSVG: true, ExtBMP: true, ExtHEIC: true,
}

// ParseExtension accepts "PDF", ".pdf" or "pdf".
func ParseExtension(s string) (Extension, error) {
	e := Extension(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if _, ok := extensions[e]; !ok {
		return "", fmt.Errorf("unsupported file extension %q", s)
	}
	return e, nil
}

// ParseExtensions parses a list, failing on the first unsupported entry.
// Duplicates are dropped.
func ParseExtensions(ss []string) ([]Extension, error) {
	out := make([]Extension, 0, len(ss))
	seen := make(map[Extension]struct{}, len(ss))
	for _, s := range ss {
		e, err := ParseExtension(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// ExtensionOf returns the extension of a file name. The second result is
// false when the name has no extension or the extension is not supported.
func ExtensionOf(name string) (Extension, bool) {
	raw := path.Ext(strings.ReplaceAll(name, "\\", "/"))
	if raw == "" {
		return "", false
	}
	e, err := ParseExtension(raw)
	if err != nil {
		return Extension(strings.ToLower(strings.TrimPrefix(raw, "."))), false
	}
	return e, true
}

// IsImage reports whether e is an image format.
func (e Extension) IsImage() bool {
	return extensions[e]
}

// ImageExtensions lists every supported image extension.
func ImageExtensions() []Extension {
	return []Extension{ExtPNG, ExtJPG, ExtJPEG, ExtGIF, ExtWEBP, ExtSVG, ExtBMP, ExtHEIC}
}
