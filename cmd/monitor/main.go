package main

import (
	"fmt"
	"os"

	"github.com/johnquangdev/monitor-agent/internal/cli"
)

// @title           Monitor Agent API
// @version         1.0
// @description     Controls the live-stream monitoring pipeline and serves its transcripts and live feed

// @contact.name   API Support
// @contact.url    https://github.com/johnquangdev/monitor-agent

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

func main() {
	if err := cli.NewRootCmd(&cli.Dependencies{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
