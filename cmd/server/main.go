// Command server runs the tunnel signalling server.
package main

import (
	"log"
	"net/http"

	"github.com/skelly37/tunnel-go/internal/config"
	"github.com/skelly37/tunnel-go/internal/logging"
	"github.com/skelly37/tunnel-go/internal/signaling"
)

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

func main() {
	logging.Init()

	hub := signaling.NewHub()
	go hub.Run()

	http.HandleFunc("/", healthCheckHandler)
	http.HandleFunc("/ws", signaling.ServeWs(hub))

	port := ":" + config.ServerPort()
	log.Printf("Starting signaling server on %s", port)
	log.Fatal(http.ListenAndServe(port, nil))
}
