package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := execute(context.Background(), rootCmd, closeSession); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd, closeSession = newRootCmd(openFromEnv)
