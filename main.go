package main

import (
	"log"

	"github.com/thiagokokada/jjk-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("jjk: %v", err)
	}
}
