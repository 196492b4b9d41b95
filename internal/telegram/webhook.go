package telegram

import (
	"context"
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

//go:embed landing.html
var landingHTML []byte

// secretTokenHeader carries the shared secret Telegram echoes back on every
// webhook delivery when one was registered with setWebhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// MessageHandler consumes validated inbound messages. Implementations must
// not block: the webhook responds to Telegram as soon as the update is
// accepted.
type MessageHandler interface {
	Handle(ctx context.Context, msg Message)
}

// WebhookServer receives Telegram updates over HTTP. It also serves a small
// landing page at the root and a health endpoint for the hosting platform.
type WebhookServer struct {
	addr    string
	secret  string
	handler MessageHandler
}

// NewWebhookServer creates a server listening on addr that forwards inbound
// messages to handler. When secret is non-empty, deliveries lacking the
// matching secret-token header are rejected.
func NewWebhookServer(addr string, secret string, handler MessageHandler) *WebhookServer {
	return &WebhookServer{
		addr:    addr,
		secret:  secret,
		handler: handler,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *WebhookServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()

	log.Printf("Webhook server listening on %s", s.addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// routes builds the HTTP handler. Updates dispatched from webhook deliveries
// run under ctx, not the request context, which ends as soon as the 200 is
// written.
func (s *WebhookServer) routes(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/telegram/webhook", s.handleWebhook(ctx))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/", handleLanding)
	return mux
}

func (s *WebhookServer) handleWebhook(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.secret != "" && r.Header.Get(secretTokenHeader) != s.secret {
			log.Printf("Rejected webhook delivery with bad secret token")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var update Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		// Acknowledge before handling so Telegram does not redeliver while a
		// reply is being generated.
		w.WriteHeader(http.StatusOK)

		if msg, ok := FromUpdate(update); ok {
			s.handler.Handle(ctx, msg)
		}
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(landingHTML)
}
