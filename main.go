package main

import (
	"log"

	"github.com/Ujjwal-Bajpayee/synapse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
