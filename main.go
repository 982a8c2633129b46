package main

import "github.com/saadjs/macrolog/cmd/macrolog"

func main() {
	macrolog.Execute()
}
