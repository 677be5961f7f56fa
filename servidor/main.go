package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"IceVision/shared/config"
	"IceVision/shared/journal"
)

func main() {
	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (saves/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
			defer logFile.Close()
		}
	}

	cfg := config.Load()
	addr := flag.String("addr", cfg.ListenAddr, "endereço HTTP/WebSocket")
	period := flag.Int("period", cfg.RegenPeriod, "segundos entre regenerações automáticas")
	strategy := flag.String("strategy", cfg.Strategy, "estratégia de ruído: single ou layered")
	level := flag.Int("level", cfg.InitialLevel, "nível de detalhe inicial (0-2)")
	journalPath := flag.String("journal", cfg.JournalPath, "banco SQLite do histórico (vazio desativa)")
	flag.Parse()

	cfg.ListenAddr = *addr
	cfg.RegenPeriod = *period
	cfg.Strategy = *strategy
	cfg.InitialLevel = *level
	cfg.JournalPath = *journalPath
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}

	log.Println("╔══════════════════════════════════════╗")
	log.Println("║       IceVision SERVER v0.1.0        ║")
	log.Println("╚══════════════════════════════════════╝")

	var j *journal.Journal
	if cfg.JournalPath != "" {
		var err error
		j, err = journal.Open(cfg.JournalPath)
		if err != nil {
			log.Printf("Aviso: histórico desativado: %v", err)
			j = nil
		} else {
			defer j.Close()
		}
	}

	srv := NewServer(cfg, j)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir %s.", cfg.ListenAddr)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	httpSrv := &http.Server{Handler: srv.Routes()}
	srv.Start()

	go func() {
		log.Printf("Servidor IceVision iniciado em %s (regeneração a cada %v)", ln.Addr(), cfg.Period())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Erro fatal no servidor HTTP: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("Encerrando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Stop()
	httpSrv.Shutdown(ctx)
}
