package satinepath

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var pathRegex = regexp.MustCompile(
	"/*" +
		// params
		"(params/)?" +
		// hash
		"((unsafe/)|([A-Za-z0-9-_=]{8,})/)?" +
		// path
		"(.+)?",
)

var paramsRegex = regexp.MustCompile(
	"/*" +
		// meta
		"(meta/)?" +
		// saturation factor and norm
		"(sat\\((-?\\d*\\.?\\d+)(,([a-z]+))?\\)/)?" +
		// preview dimensions
		"((\\d+)x(\\d+)/)?" +
		// color profile
		"(profile\\(([a-z0-9-]+)\\)/)?" +
		// output format
		"(format\\(([a-z]+)\\)/)?" +
		// image
		"(.+)?",
)

var breaksCleaner = strings.NewReplacer(
	"\r\n", "",
	"\r", "",
	"\n", "",
	"\v", "",
	"\f", "",
	"", "",
	" ", "",
	" ", "",
)

// Parse Params struct from satine endpoint URI
func Parse(path string) Params {
	var p Params
	match := pathRegex.FindStringSubmatch(breaksCleaner.Replace(path))
	if len(match) < 6 {
		return p
	}
	if match[1] != "" {
		p.Params = true
	}
	if match[3] == "unsafe/" {
		p.Unsafe = true
	} else if len(match[4]) > 8 {
		p.Hash = match[4]
	}
	p.Path = match[5]

	match = paramsRegex.FindStringSubmatch(p.Path)
	if len(match) == 0 {
		return p
	}
	if match[1] != "" {
		p.Meta = true
	}
	if match[2] != "" {
		p.Factor, _ = strconv.ParseFloat(match[3], 64)
		p.HasFactor = true
		p.Norm = match[5]
	}
	if match[6] != "" {
		p.Width, _ = strconv.Atoi(match[7])
		p.Height, _ = strconv.Atoi(match[8])
	}
	if match[9] != "" {
		p.Profile = match[10]
	}
	if match[11] != "" {
		p.Format = match[12]
	}
	if match[13] != "" {
		img := match[13]
		p.Image = img
		if u, err := url.QueryUnescape(img); err == nil {
			p.Image = u
		}
	}
	return p
}
