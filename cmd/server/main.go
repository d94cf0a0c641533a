package main

import (
	"log"

	"github.com/jyej0a/mysns/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
