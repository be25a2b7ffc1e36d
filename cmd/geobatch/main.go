package main

import (
	"github.com/labstack/gommon/color"

	"github.com/tribapps/geobatch/internal/app/cli"
)

func main() {
	printBanner()
	cli.Execute()
}

var version string

func printBanner() {
	banner := `
                    __          __       __
   ____ ____  ____ / /_  ____ _/ /______/ /_
  / __ '/ _ \/ __ \/ __ \/ __ '/ __/ ___/ __ \
 / /_/ /  __/ /_/ / /_/ / /_/ / /_/ /__/ / / /
 \__, /\___/\____/_.___/\__,_/\__/\___/_/ /_/
/____/                                        | v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/tribapps/geobatch"))
}
