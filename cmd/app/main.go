package main

import (
	"github.com/scrumpoker/core/internal/app"
	"github.com/scrumpoker/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
