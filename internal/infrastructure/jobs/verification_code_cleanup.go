package jobs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"screen2doc.backend/internal/domain/repositories"
)

// VerificationCodeCleanupJob removes expired verification codes and stale
// frame working directories left behind by interrupted pipeline runs.
type VerificationCodeCleanupJob struct {
	codeRepo repositories.VerificationCodeRepository
	frameDir string
	maxAge   time.Duration
	interval time.Duration
	stop     chan struct{}
}

func NewVerificationCodeCleanupJob(codeRepo repositories.VerificationCodeRepository, frameDir string) *VerificationCodeCleanupJob {
	return &VerificationCodeCleanupJob{
		codeRepo: codeRepo,
		frameDir: frameDir,
		maxAge:   24 * time.Hour,
		interval: 15 * time.Minute,
		stop:     make(chan struct{}),
	}
}

func (j *VerificationCodeCleanupJob) Start(ctx context.Context) {
	log.Println("Starting verification code cleanup job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Verification code cleanup job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("Verification code cleanup job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *VerificationCodeCleanupJob) Stop() {
	close(j.stop)
}

func (j *VerificationCodeCleanupJob) runOnce(ctx context.Context) {
	deleted, err := j.codeRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Printf("Error deleting expired verification codes: %v", err)
	} else if deleted > 0 {
		log.Printf("Deleted %d expired verification codes", deleted)
	}

	j.removeStaleFrameDirs()
}

// removeStaleFrameDirs deletes frame directories untouched for maxAge.
// A directory still in use by a running pipeline is always younger than
// that.
func (j *VerificationCodeCleanupJob) removeStaleFrameDirs() {
	if j.frameDir == "" {
		return
	}

	entries, err := os.ReadDir(j.frameDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading frame directory: %v", err)
		}
		return
	}

	cutoff := time.Now().Add(-j.maxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(j.frameDir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				log.Printf("Error removing stale frame directory %s: %v", path, err)
			}
		}
	}
}
