package main

import (
	"os"

	"github.com/pixelop/satine/config"
	"github.com/pixelop/satine/config/awsconfig"
	"github.com/pixelop/satine/config/gcloudconfig"
	"github.com/pixelop/satine/config/satconfig"
)

func main() {
	var server = config.CreateServer(
		os.Args[1:],
		satconfig.WithSatProcessor,
		awsconfig.WithAWS,
		gcloudconfig.WithGCloud,
	)
	if server != nil {
		server.Run()
	}
}
