package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"

	"github.com/northstack/auth-service/auth"
	"github.com/northstack/auth-service/internal/config"
	"github.com/northstack/auth-service/mailer"
	"github.com/northstack/auth-service/resetcode"
	"github.com/northstack/auth-service/server"
	"github.com/northstack/auth-service/token"
	"github.com/northstack/auth-service/users/redisrepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	codec, err := token.NewCodec(token.Secrets{
		Access:  []byte(c.GetAccessSecret()),
		Refresh: []byte(c.GetRefreshSecret()),
	})
	if err != nil {
		return fmt.Errorf("token.NewCodec: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
	defer rdb.Close()

	userRepo := redisrepo.NewUserRepo(rdb, "usr")
	resetStore := resetcode.NewRedisStore(rdb, "rst")

	var m mailer.Mailer
	if c.GetEnv() == "DEV" {
		m = mailer.NewLogMailer()
	} else {
		m = mailer.NewSmtpMailer(c)
	}

	authService, err := auth.NewService(userRepo, resetStore, codec, m, c)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, authService, userRepo)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
