package main

import "github.com/projectdiscovery/gologger"

func main() {
	if err := runCLI(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}
}
