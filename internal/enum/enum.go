package enum

// ── Group A: Persisted labels (must match existing data files) ──

const (
	OrderStatusInProgress  = "قيد التنفيذ"
	OrderStatusCompleted   = "ناجح"
	OrderStatusCancelledBy = "ملغي بواسطة"
)

const (
	ShiftDay   = "شفت النهار"
	ShiftNight = "شفت الليل"
)

const (
	PaymentCash   = "كاش"
	PaymentCredit = "آجل"
)

// ── Group B: Access control ──

const (
	UserRoleAdmin   = "admin"
	UserRoleCashier = "cashier"
)

// ── Group C: Order lifecycle events ──

const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
	EventOrderRemoved   = "order.removed"
)

// ── Group D: Report kinds ──

const (
	ReportMonthly  = "monthly"
	ReportDaily    = "daily"
	ReportSupplier = "supplier"
)
