package status

// ActionKey identifies a primary action. Keys are opaque to this package;
// callers dispatch them to navigation or API calls.
type ActionKey string

const (
	ActionOpenChat            ActionKey = "open_chat"
	ActionOpenPayment         ActionKey = "open_payment"
	ActionOpenDetails         ActionKey = "open_details"
	ActionTake                ActionKey = "take"
	ActionSetPrice            ActionKey = "set_price"
	ActionConfirmPayment      ActionKey = "confirm_payment"
	ActionConfirmPaymentAdmin ActionKey = "confirm_payment_admin"
	ActionStartWork           ActionKey = "start_work"
	ActionCompleteWork        ActionKey = "complete_work"
	ActionLeaveReview         ActionKey = "leave_review"
	ActionCreateNew           ActionKey = "create_new"
	ActionManageStatus        ActionKey = "manage_status"
)

// Action is the primary call-to-action for a (role, status) pair.
type Action struct {
	Key    ActionKey
	Label  string
	Icon   string
	Helper string
}

// actionTable is a two-level policy table: role -> status -> action, with
// an optional per-role default under the empty status key. ResolveAction
// falls back role entry -> role default -> global default, so every pair
// resolves to a non-zero action.
var actionTable = map[Role]map[Status]Action{
	RoleClient: {
		New: {
			Key: ActionOpenChat, Label: "Открыть чат", Icon: "chat",
			Helper: "Мы подбираем мастера. Если есть детали — напишите в чат заявки.",
		},
		InReview: {
			Key: ActionOpenChat, Label: "Открыть чат", Icon: "chat",
			Helper: "Мастер проверяет заявку. Обычно это занимает 5-15 минут.",
		},
		AwaitingPayment: {
			Key: ActionOpenPayment, Label: "Перейти к оплате", Icon: "payments",
			Helper: "Оплатите и прикрепите чек, чтобы мастер сразу продолжил работу.",
		},
		PaymentProofUploaded: {
			Key: ActionOpenChat, Label: "Проверить статус", Icon: "chat",
			Helper: "Чек на проверке. Если долго нет движения — напишите в чат.",
		},
		Paid: {
			Key: ActionOpenChat, Label: "Открыть чат", Icon: "chat",
			Helper: "Оплата подтверждена. Мастер готов начать работу.",
		},
		InProgress: {
			Key: ActionOpenChat, Label: "Открыть чат", Icon: "chat",
			Helper: "Работа идет. Важные обновления появятся в ленте событий.",
		},
		Completed: {
			Key: ActionLeaveReview, Label: "Оценить результат", Icon: "check",
			Helper: "Проверьте устройство и оставьте короткий отзыв.",
		},
		DeclinedByMaster: {Key: ActionCreateNew, Label: "Создать новую заявку", Icon: "arrow"},
		Cancelled:        {Key: ActionCreateNew, Label: "Создать новую заявку", Icon: "arrow"},
	},
	RoleMaster: {
		New: {
			Key: ActionTake, Label: "Взять заявку", Icon: "play",
			Helper: "Закрепите заявку за собой, чтобы начать работу.",
		},
		InReview:             {Key: ActionSetPrice, Label: "Назначить цену", Icon: "arrow"},
		AwaitingPayment:      {Key: ActionOpenChat, Label: "Открыть чат", Icon: "chat"},
		PaymentProofUploaded: {Key: ActionConfirmPayment, Label: "Подтвердить оплату", Icon: "payments"},
		Paid:                 {Key: ActionStartWork, Label: "Начать работу", Icon: "play"},
		InProgress:           {Key: ActionCompleteWork, Label: "Завершить работу", Icon: "task"},
		Completed:            {Key: ActionOpenChat, Label: "Открыть чат", Icon: "chat"},
		DeclinedByMaster:     {Key: ActionOpenDetails, Label: "Открыть заявку", Icon: "arrow"},
		Cancelled:            {Key: ActionOpenDetails, Label: "Открыть заявку", Icon: "arrow"},
	},
	RoleAdmin: {
		PaymentProofUploaded: {Key: ActionConfirmPaymentAdmin, Label: "Подтвердить оплату", Icon: "payments"},
		"":                   {Key: ActionManageStatus, Label: "Управлять статусом", Icon: "arrow"},
	},
}

// globalDefault is used when a role has neither an exact entry nor a
// role default for the status.
var globalDefault = Action{Key: ActionOpenDetails, Label: "Открыть заявку", Icon: "arrow"}

// ResolveAction returns the primary action for the given status and role.
// It is a pure, total function: unknown roles fall back to the client
// table and unknown statuses to the role (or global) default.
func ResolveAction(s Status, r Role) Action {
	table, ok := actionTable[r]
	if !ok {
		table = actionTable[RoleClient]
	}
	if a, ok := table[s]; ok {
		return a
	}
	if a, ok := table[""]; ok {
		return a
	}
	return globalDefault
}
