// Package journal registra cada malha publicada em um banco SQLite (histórico
// de gerações consultado pelo servidor em GET /history).
package journal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"IceVision/shared/regen"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GenerationRecord é o esquema de uma geração publicada.
type GenerationRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Version    uint64    `gorm:"index" json:"version"`
	Level      int       `json:"level"`
	Depth      int       `json:"depth"`
	Strategy   string    `json:"strategy"`
	Vertices   int       `json:"vertices"`
	Faces      int       `json:"faces"`
	Degenerate int       `json:"degenerate"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Metadata guarda pares chave/valor globais (versão do formato, sessão).
type Metadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// Journal implementa regen.Recorder sobre GORM.
type Journal struct {
	mu sync.Mutex
	db *gorm.DB
}

var _ regen.Recorder = (*Journal)(nil)

// Open abre (ou cria) o banco no caminho dado e roda as migrações.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}
	if err := db.AutoMigrate(&GenerationRecord{}, &Metadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}
	db.Save(&Metadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})
	db.Save(&Metadata{Key: "OpenedAt", Value: time.Now().UTC().Format(time.RFC3339)})

	log.Printf("[Journal] Banco de dados SQLite aberto: %s", path)
	return &Journal{db: db}, nil
}

// Record grava as estatísticas de uma geração.
func (j *Journal) Record(s regen.Stats) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return fmt.Errorf("journal fechado")
	}

	rec := GenerationRecord{
		Version:    s.Version,
		Level:      int(s.Level),
		Depth:      s.Depth,
		Strategy:   s.Strategy,
		Vertices:   s.Vertices,
		Faces:      s.Faces,
		Degenerate: s.Degenerate,
		DurationMs: s.Duration.Milliseconds(),
	}
	if err := j.db.Create(&rec).Error; err != nil {
		log.Printf("[Journal] ERRO ao gravar geração v%d: %v", s.Version, err)
		return err
	}
	return nil
}

// Recent retorna as n gerações mais recentes, da mais nova para a mais antiga.
func (j *Journal) Recent(n int) ([]GenerationRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil, fmt.Errorf("journal fechado")
	}
	if n <= 0 {
		n = 50
	}

	var out []GenerationRecord
	err := j.db.Order("id desc").Limit(n).Find(&out).Error
	return out, err
}

// Count retorna quantas gerações já foram registradas.
func (j *Journal) Count() (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return 0, fmt.Errorf("journal fechado")
	}
	var n int64
	err := j.db.Model(&GenerationRecord{}).Count(&n).Error
	return n, err
}

// Meta lê um valor de metadados ("" se ausente).
func (j *Journal) Meta(key string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return ""
	}
	var m Metadata
	if err := j.db.First(&m, "key = ?", key).Error; err != nil {
		return ""
	}
	return m.Value
}

// Close fecha a conexão. Chamadas repetidas são ignoradas.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	j.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
