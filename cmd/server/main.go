package main

import "privacydesk/internal/app/server"

func main() {
	server.Run()
}
