package satinepath

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenerate(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		params Params
	}{
		{
			name: "unsafe with all segments",
			uri:  "unsafe/sat(0.96,average)/300x200/profile(prophoto)/format(png)/example.com/foo.jpg",
			params: Params{
				Path:      "sat(0.96,average)/300x200/profile(prophoto)/format(png)/example.com/foo.jpg",
				Image:     "example.com/foo.jpg",
				Unsafe:    true,
				Factor:    0.96,
				HasFactor: true,
				Norm:      "average",
				Width:     300,
				Height:    200,
				Profile:   "prophoto",
				Format:    "png",
			},
		},
		{
			name: "factor only",
			uri:  "unsafe/sat(1.5)/example.com/foo.jpg",
			params: Params{
				Path:      "sat(1.5)/example.com/foo.jpg",
				Image:     "example.com/foo.jpg",
				Unsafe:    true,
				Factor:    1.5,
				HasFactor: true,
			},
		},
		{
			name: "meta",
			uri:  "unsafe/meta/sat(0,vector)/example.com/foo.jpg",
			params: Params{
				Path:      "meta/sat(0,vector)/example.com/foo.jpg",
				Image:     "example.com/foo.jpg",
				Unsafe:    true,
				Meta:      true,
				Factor:    0,
				HasFactor: true,
				Norm:      "vector",
			},
		},
		{
			name: "image only",
			uri:  "unsafe/example.com/foo.jpg",
			params: Params{
				Path:   "example.com/foo.jpg",
				Image:  "example.com/foo.jpg",
				Unsafe: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Parse(tt.uri)
			assert.Equal(t, tt.params, resp)
			assert.Equal(t, tt.uri, GenerateUnsafe(resp))
		})
	}
}

func TestParseSigned(t *testing.T) {
	signer := NewHMACSigner(sha256.New, 28, "1234")
	p := Params{
		Image:     "example.com/foo.jpg",
		Factor:    2,
		HasFactor: true,
		Norm:      "power",
	}
	uri := Generate(p, signer)
	parsed := Parse(uri)
	assert.False(t, parsed.Unsafe)
	assert.Equal(t, signer.Sign(parsed.Path), parsed.Hash)
	assert.Equal(t, 2.0, parsed.Factor)
	assert.Equal(t, "power", parsed.Norm)
	assert.Equal(t, "example.com/foo.jpg", parsed.Image)
}

func TestParseParamsEndpoint(t *testing.T) {
	p := Parse("params/unsafe/sat(0.5)/example.com/foo.jpg")
	assert.True(t, p.Params)
	assert.True(t, p.Unsafe)
	assert.Equal(t, 0.5, p.Factor)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "foo/bar", Normalize("/foo/bar/", nil))
	assert.Equal(t, "foo/b%7B%3A%7Dar", Normalize("/foo/b{:}ar", nil))
	assert.Equal(t, "foo/b{%3A}ar", Normalize("/foo/b{:}ar", NewSafeChars("{}")))
	assert.Equal(t, "foo/b{:}ar", Normalize("/foo/b{:}ar", NewSafeChars("{}:")))
}

func TestDigestResultKey(t *testing.T) {
	p := Parse("unsafe/sat(0.96)/example.com/foo.jpg")
	key := DigestResultKey.Generate(p)
	assert.Len(t, key, 42)
	assert.Equal(t, key, DigestResultKey.Generate(p))
}
