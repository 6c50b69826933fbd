package main

import (
	"github.com/marcus/shelf/cmd"
	"github.com/marcus/shelf/internal/version"
)

// Version is stamped by release builds: -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

func main() {
	cmd.SetVersion(version.Effective(Version))
	cmd.Execute()
}
