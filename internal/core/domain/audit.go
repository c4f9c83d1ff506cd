package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionOpenUser        AuditAction = "OPEN_USER"
	AuditActionOpenAccount     AuditAction = "OPEN_ACCOUNT"
	AuditActionIssueCard       AuditAction = "ISSUE_CARD"
	AuditActionRegisterChannel AuditAction = "REGISTER_CHANNEL"
	AuditActionStartSession    AuditAction = "START_SESSION"
	AuditActionEndSession      AuditAction = "END_SESSION"
	AuditActionDeposit         AuditAction = "DEPOSIT"
	AuditActionWithdraw        AuditAction = "WITHDRAW"
	AuditActionTransfer        AuditAction = "TRANSFER"
	AuditActionPayment         AuditAction = "PAYMENT"
	AuditActionInterest        AuditAction = "INTEREST"
	AuditActionAnnualFees      AuditAction = "ANNUAL_FEES"
	AuditActionDailyReset      AuditAction = "DAILY_RESET"
	AuditActionOperatorLogin   AuditAction = "OPERATOR_LOGIN"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ChannelID    string      `json:"channel_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
