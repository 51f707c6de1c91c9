package models

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusExpired   SessionStatus = "EXPIRED"
)

type GameStatus string

const (
	GameStatusActive       GameStatus = "ACTIVE"
	GameStatusInactive     GameStatus = "INACTIVE"
	GameStatusDiscontinued GameStatus = "DISCONTINUED"
)

type PackStatus string

const (
	PackStatusReceived PackStatus = "RECEIVED"
	PackStatusActive   PackStatus = "ACTIVE"
	PackStatusDepleted PackStatus = "DEPLETED"
	PackStatusReturned PackStatus = "RETURNED"
)

type BusinessDayStatus string

const (
	BusinessDayStatusOpen         BusinessDayStatus = "OPEN"
	BusinessDayStatusPendingClose BusinessDayStatus = "PENDING_CLOSE"
	BusinessDayStatusClosed       BusinessDayStatus = "CLOSED"
)

type EntryMethod string

const (
	EntryMethodScanned EntryMethod = "SCANNED"
	EntryMethodManual  EntryMethod = "MANUAL"
)

func (m EntryMethod) Valid() bool {
	return m == EntryMethodScanned || m == EntryMethodManual
}

type DepletionReason string

const (
	DepletionReasonSoldOut   DepletionReason = "SOLD_OUT"
	DepletionReasonDamaged   DepletionReason = "DAMAGED"
	DepletionReasonExpired   DepletionReason = "EXPIRED"
	DepletionReasonRecalled  DepletionReason = "RECALLED"
	DepletionReasonOtherLoss DepletionReason = "OTHER_LOSS"
)

func (r DepletionReason) Valid() bool {
	switch r {
	case DepletionReasonSoldOut, DepletionReasonDamaged, DepletionReasonExpired,
		DepletionReasonRecalled, DepletionReasonOtherLoss:
		return true
	}
	return false
}

type ReturnReason string

const (
	ReturnReasonGameEnded ReturnReason = "GAME_ENDED"
	ReturnReasonDamaged   ReturnReason = "DAMAGED"
	ReturnReasonRecalled  ReturnReason = "RECALLED"
	ReturnReasonSlowMover ReturnReason = "SLOW_MOVER"
)

func (r ReturnReason) Valid() bool {
	switch r {
	case ReturnReasonGameEnded, ReturnReasonDamaged, ReturnReasonRecalled, ReturnReasonSlowMover:
		return true
	}
	return false
}

type BinMoveReason string

const (
	BinMoveReasonActivation BinMoveReason = "ACTIVATION"
	BinMoveReasonRestock    BinMoveReason = "RESTOCK"
	BinMoveReasonRearrange  BinMoveReason = "REARRANGE"
	BinMoveReasonManual     BinMoveReason = "MANUAL"
)

func (r BinMoveReason) Valid() bool {
	switch r {
	case BinMoveReasonActivation, BinMoveReasonRestock, BinMoveReasonRearrange, BinMoveReasonManual:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin   UserRole = "Admin"
	UserRoleManager UserRole = "Manager"
	UserRoleCashier UserRole = "Cashier"
)

type AuditEventType string

const (
	AuditEventSessionStarted    AuditEventType = "SESSION_STARTED"
	AuditEventSessionCompleted  AuditEventType = "SESSION_COMPLETED"
	AuditEventPackReceived      AuditEventType = "PACK_RECEIVED"
	AuditEventPackActivated     AuditEventType = "PACK_ACTIVATED"
	AuditEventPackMoved         AuditEventType = "PACK_MOVED"
	AuditEventPackDepleted      AuditEventType = "PACK_DEPLETED"
	AuditEventPackReturned      AuditEventType = "PACK_RETURNED"
	AuditEventShiftOpened       AuditEventType = "SHIFT_OPENED"
	AuditEventShiftClosed       AuditEventType = "SHIFT_CLOSED"
	AuditEventDayClosePrepared  AuditEventType = "DAY_CLOSE_PREPARED"
	AuditEventDayCloseCommitted AuditEventType = "DAY_CLOSE_COMMITTED"
	AuditEventDayCloseCancelled AuditEventType = "DAY_CLOSE_CANCELLED"
	AuditEventVarianceApproved  AuditEventType = "VARIANCE_APPROVED"
)

// Audit outbox publish lifecycle (mirrors the transactional-outbox states).
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusPublished  = "PUBLISHED"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)
