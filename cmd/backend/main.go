package main

import (
	"fmt"
	"os"

	"github.com/smartbuspass/backend/cmd/backend/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
