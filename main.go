package main

import (
	"github.com/soroswap/soroswap-analytics/cmd"
)

func main() {
	cmd.Execute()
}
