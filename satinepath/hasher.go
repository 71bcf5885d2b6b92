package satinepath

import (
	"crypto/sha1"
	"encoding/hex"
)

// ResultKey generates result storage key from Params
type ResultKey interface {
	Generate(p Params) string
}

// ResultKeyFunc ResultKey handler func
type ResultKeyFunc func(p Params) string

// Generate implements ResultKey interface
func (h ResultKeyFunc) Generate(p Params) string {
	return h(p)
}

func hexDigestPath(path string) string {
	digest := sha1.Sum([]byte(path))
	hash := hex.EncodeToString(digest[:])
	return hash[:2] + "/" + hash[2:4] + "/" + hash[4:]
}

// DigestResultKey ResultKey using SHA digest of the params path
var DigestResultKey = ResultKeyFunc(func(p Params) string {
	if p.Path == "" {
		p.Path = GeneratePath(p)
	}
	return hexDigestPath(p.Path)
})
