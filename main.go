// main.go
package main

import (
	"log"

	"magis-site/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
