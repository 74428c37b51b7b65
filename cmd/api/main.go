package main

import (
	"context"
	"log"

	"github.com/Apurer/petcare-portal/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("portal API failed: %v", err)
	}
}
