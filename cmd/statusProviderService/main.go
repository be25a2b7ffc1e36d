package main

import (
	"github.com/labstack/gommon/color"

	"github.com/tribapps/geobatch/internal/app/status"
)

func main() {
	printBanner()
	status.Execute()
}

var version string

func printBanner() {
	banner := `
         __        __
   _____/ /_____ _/ /___  _______
  / ___/ __/ __ '/ __/ / / / ___/
 (__  ) /_/ /_/ / /_/ /_/ (__  )
/____/\__/\__,_/\__/\__,_/____/  | v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/tribapps/geobatch"))
}
