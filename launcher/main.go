package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// exeName acrescenta .exe no Windows.
func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// waitReady consulta /status até o servidor publicar a primeira malha.
func waitReady(statusURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(statusURL)
		if err == nil {
			var st struct {
				State   string `json:"state"`
				Version uint64 `json:"version"`
			}
			err = json.NewDecoder(resp.Body).Decode(&st)
			resp.Body.Close()
			if err == nil && st.Version > 0 {
				return nil
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	return fmt.Errorf("servidor não respondeu em %v", timeout)
}

func main() {
	port := flag.Int("port", 8080, "Porta do servidor")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║         IceVision Launcher           ║")
	fmt.Println("╚══════════════════════════════════════╝")

	addr := fmt.Sprintf(":%d", *port)

	// 1. Servidor em uma nova janela no Windows (para ver os logs)
	fmt.Println("[1/2] Iniciando Servidor...")
	var serverCmd *exec.Cmd
	if runtime.GOOS == "windows" {
		serverCmd = exec.Command("cmd", "/c", "start", "IceVision SERVER", exeName("server"), "-addr", addr)
	} else {
		serverCmd = exec.Command("./"+exeName("server"), "-addr", addr)
	}
	serverCmd.Dir = "servidor"
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	// 2. Aguardar a primeira malha
	fmt.Println("Aguardando o servidor gerar a primeira malha...")
	if err := waitReady(fmt.Sprintf("http://localhost:%d/status", *port), 15*time.Second); err != nil {
		log.Fatalf("Erro: %v", err)
	}

	// 3. Cliente apontando para o servidor
	fmt.Println("[2/2] Abrindo Cliente...")

	absClientPath, err := filepath.Abs(filepath.Join("cliente", exeName("client")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do cliente: %v", err)
	}

	clientCmd := exec.Command(absClientPath, "-server", fmt.Sprintf("ws://localhost:%d/ws", *port))
	clientCmd.Dir = "cliente" // assets e config ficam ao lado do executável

	if err := clientCmd.Start(); err != nil {
		fmt.Printf("ERRO CRÍTICO: Não foi possível executar o cliente em %s\n", absClientPath)
		fmt.Printf("Detalhes: %v\n", err)
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
		return
	}

	fmt.Println("\nSucesso! IceVision foi iniciado.")
	fmt.Println("O Launcher fechará automaticamente em 2 segundos...")
	time.Sleep(2 * time.Second)
}
