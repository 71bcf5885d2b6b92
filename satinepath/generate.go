package satinepath

import (
	"fmt"
	"strconv"
	"strings"
)

// GeneratePath endpoint path from Params struct, without hash segment
func GeneratePath(p Params) string {
	var parts []string
	if p.Meta {
		parts = append(parts, "meta")
	}
	if p.HasFactor {
		seg := "sat(" + strconv.FormatFloat(p.Factor, 'f', -1, 64)
		if p.Norm != "" {
			seg += "," + p.Norm
		}
		parts = append(parts, seg+")")
	}
	if p.Width != 0 || p.Height != 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", p.Width, p.Height))
	}
	if p.Profile != "" {
		parts = append(parts, "profile("+p.Profile+")")
	}
	if p.Format != "" {
		parts = append(parts, "format("+p.Format+")")
	}
	parts = append(parts, p.Image)
	return strings.Join(parts, "/")
}

// Generate endpoint uri from Params struct, signed by signer
func Generate(p Params, signer Signer) string {
	path := GeneratePath(p)
	if signer != nil {
		return signer.Sign(path) + "/" + path
	}
	return path
}

// GenerateUnsafe unsafe endpoint uri from Params struct
func GenerateUnsafe(p Params) string {
	return "unsafe/" + GeneratePath(p)
}
