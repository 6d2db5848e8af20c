package main

import (
	"os"

	"github.com/hmkim/ordertrack/pkg/ordertrack"
)

func main() {
	os.Exit(ordertrack.Main())
}
