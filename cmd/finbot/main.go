package main

import (
	"log"

	corecmd "github.com/m3rciful/finbot/core/cmd"
	"github.com/m3rciful/finbot/internal/app"
)

func main() {
	if err := corecmd.Run(corecmd.Options{
		ConfigEnvVar: "FINBOT_CONFIG",
		Bootstrap:    app.Bootstrap,
	}); err != nil {
		log.Fatal(err)
	}
}
