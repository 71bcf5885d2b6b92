// Package satinepath parses and generates the satine URL endpoint syntax:
//
//	/{unsafe|HASH}/{meta/}{sat(FACTOR,NORM)/}{WxH/}{profile(NAME)/}{format(FMT)/}IMAGE
//
// where HASH is the URL-safe base64 HMAC signature of the path that follows.
package satinepath

// Params endpoint parameters
type Params struct {
	Params    bool    `json:"-"`
	Path      string  `json:"path,omitempty"`
	Image     string  `json:"image,omitempty"`
	Unsafe    bool    `json:"unsafe,omitempty"`
	Hash      string  `json:"hash,omitempty"`
	Meta      bool    `json:"meta,omitempty"`
	Factor    float64 `json:"factor,omitempty"`
	HasFactor bool    `json:"has_factor,omitempty"`
	Norm      string  `json:"norm,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Profile   string  `json:"profile,omitempty"`
	Format    string  `json:"format,omitempty"`
}
