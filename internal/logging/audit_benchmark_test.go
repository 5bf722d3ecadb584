package logging

import (
	"os"
	"testing"
)

func BenchmarkAuditLog(b *testing.B) {
	tempDir, err := os.MkdirTemp("", "logging_bench")
	if err != nil {
		b.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	os.WriteFile(tempDir+"/logging_settings.json",
		[]byte(`{"logging": {"level": "debug", "debug_mode": true}}`), 0644)

	resetState()
	if err := Initialize(tempDir); err != nil {
		b.Fatalf("failed to initialize: %v", err)
	}
	if err := InitAudit(); err != nil {
		b.Fatalf("failed to init audit: %v", err)
	}
	defer CloseAudit()

	logger := AuditWithSession("bench-session")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.ActionTransition(AuditActionApproved, "action-1", "pending", "approved")
	}
}
