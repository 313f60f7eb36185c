package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"ballsim/internal/runner"
)

func main() {
	configFile := flag.String("config", "", "Path to run configuration YAML file")
	flag.Parse()
	if *configFile == "" {
		log.Fatal("-config not given.")
	}

	if err := runner.Run(*configFile); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
