package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"runtime"

	"IceVision/cliente/internal/app"
	"IceVision/cliente/internal/flags"
	"IceVision/shared/config"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	cfg := config.Load()

	// Flags sobrescrevem o config salvo
	if err := flags.Apply(cfg, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("[IceVision] Configuração inválida: %v", err)
	}

	f, err := os.OpenFile("debug_ice.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		log.Println("--- INICIANDO ICEVISION ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║          IceVision v0.1.0            ║")
	log.Println("║     Cristal de gelo procedural       ║")
	log.Println("╚══════════════════════════════════════╝")

	application := app.New(cfg)
	application.Run()
}
