// Command genhash prints a bcrypt hash for manual password resets.
// Usage: go run ./cmd/genhash -cost 12 <password>
package main

import (
	"flag"
	"fmt"
	"os"

	"repairtrack/internal/service"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: genhash [-cost N] <password>")
		os.Exit(2)
	}

	h, err := service.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
