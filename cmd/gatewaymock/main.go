// gatewaymock is a local stand-in for the SSLCommerz sandbox, with failure
// injection for exercising the settlement paths.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"topupmart/internal/app/logger"
	mw "topupmart/internal/app/middleware"
	"topupmart/pkg/sslcommerz"
)

func main() {
	// setting up signal capturing
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		osCall := <-stop
		log.Printf("System call: %+v", osCall)
		cancel()
	}()

	l := logger.New(true, true)

	if err := runServer(ctx, "127.0.0.1:8090", l); err != nil {
		l.Fatal().Err(err).Msg("Server run failed")
	}
}

func runServer(ctx context.Context, listenAddr string, l logger.Logger) (err error) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(l))
	r.Post("/gwprocess/v4/api.php", CreateSession)
	r.Get("/validator/api/validationserverAPI.php", ValidatePayment)

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on %s", listenAddr)
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("")
		}
	}()

	log.Printf("Server started")
	<-ctx.Done()
	log.Printf("Server stopped")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err = srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Printf("Server exited properly")

	return
}

func CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Ctx(ctx).With().Str("method", "CreateSession").Logger()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tranID := r.PostFormValue("tran_id")
	l.Info().Str("tran_id", tranID).Str("amount", r.PostFormValue("total_amount")).Msg("Session requested")

	if rand.Float32() < 0.2 {
		http.Error(w, "fail", http.StatusInternalServerError)
		return
	}

	out := &sslcommerz.SessionResponse{}
	if rand.Float32() < 0.2 {
		out.Status = "FAILED"
		out.FailedReason = "Store credentials invalid"
	} else {
		out.Status = sslcommerz.SessionStatusSuccess
		out.SessionKey = fmt.Sprintf("sess_%d", rand.Int63())
		out.GatewayPageURL = "http://" + r.Host + "/gwprocess/v4/gw.php?Q=PAY&SESSIONKEY=" + out.SessionKey
	}

	rawJson, _ := json.Marshal(out)
	_, _ = w.Write(rawJson)
}

func ValidatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	valID := r.URL.Query().Get("val_id")
	l := logger.Ctx(ctx).With().Str("val_id", valID).Str("method", "ValidatePayment").Logger()

	if valID == "" {
		http.Error(w, "missing val_id", http.StatusBadRequest)
		return
	}

	if rand.Float32() < 0.2 {
		http.Error(w, "fail", http.StatusInternalServerError)
		return
	}

	out := &sslcommerz.ValidationResponse{
		Status: "VALID",
		ValID:  valID,
	}
	if rand.Float32() < 0.2 {
		out.Status = "INVALID_TRANSACTION"
	}
	l.Info().Str("status", out.Status).Msg("Validation answered")

	rawJson, _ := json.Marshal(out)
	_, _ = w.Write(rawJson)
}
