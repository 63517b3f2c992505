package status

// Status is an appointment lifecycle status as reported by the backend.
// The lifecycle itself is owned server-side; this package only maps
// statuses to display and action policy.
type Status string

const (
	New                  Status = "NEW"
	InReview             Status = "IN_REVIEW"
	AwaitingPayment      Status = "AWAITING_PAYMENT"
	PaymentProofUploaded Status = "PAYMENT_PROOF_UPLOADED"
	Paid                 Status = "PAID"
	InProgress           Status = "IN_PROGRESS"
	Completed            Status = "COMPLETED"
	DeclinedByMaster     Status = "DECLINED_BY_MASTER"
	Cancelled            Status = "CANCELLED"
)

// All lists every known status in lifecycle order, terminal error
// statuses last.
var All = []Status{
	New,
	InReview,
	AwaitingPayment,
	PaymentProofUploaded,
	Paid,
	InProgress,
	Completed,
	DeclinedByMaster,
	Cancelled,
}

// ProgressOrder is the happy-path step sequence shown by progress
// displays. Terminal error statuses are not steps.
var ProgressOrder = []Status{
	New,
	InReview,
	AwaitingPayment,
	PaymentProofUploaded,
	Paid,
	InProgress,
	Completed,
}

// stepIndex maps a status to its position in ProgressOrder. Declined and
// cancelled appointments map to low indices so progress displays reflect
// that the appointment did not advance.
var stepIndex = map[Status]int{
	New:                  0,
	InReview:             1,
	AwaitingPayment:      2,
	PaymentProofUploaded: 3,
	Paid:                 4,
	InProgress:           5,
	Completed:            6,
	DeclinedByMaster:     1,
	Cancelled:            0,
}

// StepIndex returns the progress step for s. Unknown statuses map to 0.
func StepIndex(s Status) int {
	if i, ok := stepIndex[s]; ok {
		return i
	}
	return 0
}

// Terminal reports whether s is a terminal error status.
func Terminal(s Status) bool {
	return s == DeclinedByMaster || s == Cancelled
}

// Final reports whether the lifecycle is over, successfully or not.
func Final(s Status) bool {
	return s == Completed || Terminal(s)
}

// Role is the viewer's role. It selects which action table applies.
type Role string

const (
	RoleClient Role = "client"
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
)

// Roles lists every known role.
var Roles = []Role{RoleClient, RoleMaster, RoleAdmin}
