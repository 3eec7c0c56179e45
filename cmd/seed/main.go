package main

import (
	"context"
	"log"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap seed runtime: %v", err)
	}
	if err := runtime.RunSeed(ctx); err != nil {
		log.Fatalf("run seed: %v", err)
	}
}
