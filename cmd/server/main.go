package main

import "salesperf/internal/app/server"

func main() {
	server.Run()
}
