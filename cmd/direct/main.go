package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/pixelop/satine"
	"github.com/pixelop/satine/loader/httploader"
	"github.com/pixelop/satine/processor/satprocessor"
	"github.com/pixelop/satine/satinepath"
)

// direct library usage without the HTTP server
func main() {
	app := satine.New(
		satine.WithProcessors(satprocessor.New()),
		satine.WithUnsafe(true),
		satine.WithLoaders(httploader.New()),
	)
	ctx := context.Background()
	if err := app.Startup(ctx); err != nil {
		panic(err)
	}
	defer app.Shutdown(ctx)
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, "", nil)
	if err != nil {
		panic(err)
	}
	blob, err := app.Do(r, satinepath.Params{
		Unsafe:    true,
		Image:     "https://raw.githubusercontent.com/golang-samples/gopher-vector/master/gopher.png",
		Factor:    0.5,
		HasFactor: true,
		Norm:      "luminance",
		Width:     500,
		Height:    500,
		Format:    "jpeg",
	})
	if err != nil {
		panic(err)
	}
	reader, _, err := blob.NewReader()
	if err != nil {
		panic(err)
	}
	defer reader.Close()
	file, err := os.Create("gopher.jpg")
	if err != nil {
		panic(err)
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		panic(err)
	}
}
