package main

import (
	"github.com/avelora/admin-metrics/internal/app"
	"github.com/avelora/admin-metrics/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
