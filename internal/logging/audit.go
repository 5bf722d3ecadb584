// Package logging also provides audit logging: an append-only, timestamped
// record of state-changing events across the core, independent of the
// per-category debug logs. It gives components a uniform way to record
// a decision (policy gate, provider call, workflow step, guard block).
// The pending-action ledger (C4) in internal/queue keeps its own file
// and does not write through it.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType identifies the kind of audit event.
type AuditEventType string

const (
	// Action queue lifecycle (C4).
	AuditActionEnqueued AuditEventType = "action_enqueued"
	AuditActionApproved AuditEventType = "action_approved"
	AuditActionDenied   AuditEventType = "action_denied"
	AuditActionExpired  AuditEventType = "action_expired"
	AuditActionExecuted AuditEventType = "action_executed"
	AuditActionFailed   AuditEventType = "action_failed"

	// Rollback (C5).
	AuditRollbackPushed   AuditEventType = "rollback_pushed"
	AuditRollbackExecuted AuditEventType = "rollback_executed"
	AuditRollbackFailed   AuditEventType = "rollback_failed"

	// Policy decisions (C2).
	AuditPolicyAllow   AuditEventType = "policy_allow"
	AuditPolicyDeny    AuditEventType = "policy_deny"
	AuditPolicyRedact  AuditEventType = "policy_redact"
	AuditPolicyChanged AuditEventType = "policy_changed"

	// Provider calls (C3).
	AuditProviderCall      AuditEventType = "provider_call"
	AuditProviderFailover  AuditEventType = "provider_failover"
	AuditProviderCircuitOpen  AuditEventType = "provider_circuit_open"
	AuditProviderCircuitClose AuditEventType = "provider_circuit_close"

	// Workflow steps (C7).
	AuditWorkflowStepStart AuditEventType = "workflow_step_start"
	AuditWorkflowStepDone  AuditEventType = "workflow_step_done"
	AuditWorkflowStepError AuditEventType = "workflow_step_error"

	// Orchestrator turns (C8).
	AuditTurnStart AuditEventType = "turn_start"
	AuditTurnEnd   AuditEventType = "turn_end"

	// MCP bridge (C9).
	AuditMCPConnect    AuditEventType = "mcp_connect"
	AuditMCPDisconnect AuditEventType = "mcp_disconnect"
	AuditMCPToolInvoke AuditEventType = "mcp_tool_invoke"

	// Monitor (C10).
	AuditMonitorCapture  AuditEventType = "monitor_capture"
	AuditMonitorCadence  AuditEventType = "monitor_cadence_change"

	// Guards (C11).
	AuditGuardBlock AuditEventType = "guard_block"
	AuditGuardAllow AuditEventType = "guard_allow"
	AuditLeakFound  AuditEventType = "leak_found"

	// Event bus / intent engine (C12).
	AuditIntentCreated AuditEventType = "intent_created"
	AuditIntentActed   AuditEventType = "intent_acted"

	// Generic.
	AuditErrorGeneric  AuditEventType = "error_generic"
	AuditErrorCritical AuditEventType = "error_critical"
)

// AuditEvent is a single structured audit log line.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat"`
	SessionID  string                 `json:"session"`
	ActionID   string                 `json:"action,omitempty"`
	Target     string                 `json:"target"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes audit events scoped to a session/category.
type AuditLogger struct {
	sessionID string
	category  Category
}

// InitAudit opens the audit log file. No-op when debug mode is off.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# audit log started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global, unscoped audit logger.
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession scopes an audit logger to a session.
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// AuditWithContext scopes an audit logger to a session and category.
func AuditWithContext(sessionID string, category Category) *AuditLogger {
	return &AuditLogger{sessionID: sessionID, category: category}
}

// Log writes an audit event as a JSON line. Safe for concurrent use;
// nothing is written unless debug mode is on and the audit file is open.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && a.sessionID != "" {
		event.SessionID = a.sessionID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	auditFile.WriteString(string(data) + "\n")
}

// ActionEnqueued logs a new pending action entering the queue.
func (a *AuditLogger) ActionEnqueued(actionID, kind string) {
	a.Log(AuditEvent{
		EventType: AuditActionEnqueued,
		ActionID:  actionID,
		Target:    kind,
		Success:   true,
		Message:   fmt.Sprintf("action %s enqueued (%s)", actionID, kind),
	})
}

// ActionTransition logs a state-machine transition on a pending action.
func (a *AuditLogger) ActionTransition(eventType AuditEventType, actionID, fromStatus, toStatus string) {
	a.Log(AuditEvent{
		EventType: eventType,
		ActionID:  actionID,
		Success:   true,
		Fields:    map[string]interface{}{"from": fromStatus, "to": toStatus},
		Message:   fmt.Sprintf("action %s: %s -> %s", actionID, fromStatus, toStatus),
	})
}

// ActionExecuted logs the outcome of executing an approved action.
func (a *AuditLogger) ActionExecuted(actionID string, durationMs int64, success bool, errMsg string) {
	eventType := AuditActionExecuted
	if !success {
		eventType = AuditActionFailed
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		ActionID:   actionID,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("action %s executed (success=%v, %dms)", actionID, success, durationMs),
	})
}

// PolicyDecision logs an allow/deny/redact decision from the privacy policy.
func (a *AuditLogger) PolicyDecision(eventType AuditEventType, target, reason string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    target,
		Success:   eventType != AuditPolicyDeny,
		Fields:    map[string]interface{}{"reason": reason},
		Message:   fmt.Sprintf("policy %s: %s (%s)", eventType, target, reason),
	})
}

// ProviderCall logs an AI provider invocation.
func (a *AuditLogger) ProviderCall(provider, taskClass string, durationMs int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditProviderCall,
		Target:     provider,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Fields:     map[string]interface{}{"task_class": taskClass},
		Message:    fmt.Sprintf("provider %s call (%s, success=%v, %dms)", provider, taskClass, success, durationMs),
	})
}

// ProviderCircuit logs a circuit breaker state change.
func (a *AuditLogger) ProviderCircuit(eventType AuditEventType, provider string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    provider,
		Success:   true,
		Message:   fmt.Sprintf("provider %s circuit: %s", provider, eventType),
	})
}

// WorkflowStep logs a workflow step's lifecycle.
func (a *AuditLogger) WorkflowStep(eventType AuditEventType, workflowID, step string, durationMs int64, errMsg string) {
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     step,
		SessionID:  workflowID,
		Success:    errMsg == "",
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("workflow %s step %s: %s", workflowID, step, eventType),
	})
}

// TurnStart logs an orchestrator turn beginning.
func (a *AuditLogger) TurnStart(sessionID string, turnNum int) {
	a.Log(AuditEvent{
		EventType: AuditTurnStart,
		SessionID: sessionID,
		Success:   true,
		Fields:    map[string]interface{}{"turn": turnNum},
		Message:   fmt.Sprintf("turn %d started", turnNum),
	})
}

// TurnEnd logs an orchestrator turn completing.
func (a *AuditLogger) TurnEnd(sessionID string, turnNum int, durationMs int64, success bool) {
	a.Log(AuditEvent{
		EventType:  AuditTurnEnd,
		SessionID:  sessionID,
		Success:    success,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"turn": turnNum},
		Message:    fmt.Sprintf("turn %d ended (%dms, success=%v)", turnNum, durationMs, success),
	})
}

// MCPToolInvoke logs a tool invocation through the MCP bridge.
func (a *AuditLogger) MCPToolInvoke(toolName string, durationMs int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditMCPToolInvoke,
		Target:     toolName,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("mcp tool %s invoked (success=%v, %dms)", toolName, success, durationMs),
	})
}

// GuardDecision logs an input or leak guard's verdict.
func (a *AuditLogger) GuardDecision(eventType AuditEventType, target, reason string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    target,
		Success:   eventType == AuditGuardAllow,
		Fields:    map[string]interface{}{"reason": reason},
		Message:   fmt.Sprintf("guard %s: %s (%s)", eventType, target, reason),
	})
}

// IntentEvent logs an event bus intent candidate and its disposition.
func (a *AuditLogger) IntentEvent(eventType AuditEventType, intentID string, score float64) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    intentID,
		Success:   true,
		Fields:    map[string]interface{}{"score": score},
		Message:   fmt.Sprintf("intent %s: %s (score=%.2f)", intentID, eventType, score),
	})
}

// Error logs a generic error event.
func (a *AuditLogger) Error(category string, err error, critical bool) {
	eventType := AuditErrorGeneric
	if critical {
		eventType = AuditErrorCritical
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Category:  category,
		Success:   false,
		Error:     errMsg,
		Message:   fmt.Sprintf("error in %s: %s (critical=%v)", category, errMsg, critical),
	})
}
