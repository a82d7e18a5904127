package main

import (
	"github.com/graphlens/dashboard/internal/server"
	"github.com/graphlens/dashboard/internal/util"
	"github.com/graphlens/dashboard/pkg/logger"
	"github.com/graphlens/dashboard/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
