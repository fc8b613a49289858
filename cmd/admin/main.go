package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/admin"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
)

func main() {

	command := ""
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		command = os.Args[1]
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := admin.New(cfg, os.Stdin, os.Stdout).Run(context.Background(), command); err != nil {
		log.Fatalf("%v", err)
	}
}
