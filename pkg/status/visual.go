package status

// Visual describes how a status is rendered: chip label, the step label
// shown above the progress bar, a short hint for the viewer and a color
// pair (foreground/background hex).
type Visual struct {
	Label      string
	StepLabel  string
	Hint       string
	Color      string
	Background string
}

var visuals = map[Status]Visual{
	New: {
		Label:      "Новая",
		StepLabel:  "Заявка создана",
		Hint:       "Мы подбираем мастера",
		Color:      "#2678d8",
		Background: "#eaf2ff",
	},
	InReview: {
		Label:      "На проверке",
		StepLabel:  "Мастер подключился",
		Hint:       "Уточняем детали и готовим цену",
		Color:      "#0d6e9f",
		Background: "#e8f5fb",
	},
	AwaitingPayment: {
		Label:      "Ожидает оплату",
		StepLabel:  "Ожидаем оплату",
		Hint:       "Оплатите и прикрепите чек",
		Color:      "#d1890f",
		Background: "#fff6e6",
	},
	PaymentProofUploaded: {
		Label:      "Чек загружен",
		StepLabel:  "Проверяем оплату",
		Hint:       "Проверка обычно занимает 1-5 минут",
		Color:      "#b8740f",
		Background: "#fff1dc",
	},
	Paid: {
		Label:      "Оплачено",
		StepLabel:  "Оплата подтверждена",
		Hint:       "Можно начинать работу",
		Color:      "#0fa37f",
		Background: "#e8fbf5",
	},
	InProgress: {
		Label:      "В работе",
		StepLabel:  "Работа выполняется",
		Hint:       "Мастер работает над разблокировкой",
		Color:      "#0a567c",
		Background: "#e8f2f8",
	},
	Completed: {
		Label:      "Завершено",
		StepLabel:  "Готово",
		Hint:       "Проверьте устройство и оставьте отзыв",
		Color:      "#1c9a4d",
		Background: "#eaf8ef",
	},
	DeclinedByMaster: {
		Label:      "Отклонено мастером",
		StepLabel:  "Заявка отклонена",
		Hint:       "Создайте новую заявку, если актуально",
		Color:      "#c63f38",
		Background: "#fdeceb",
	},
	Cancelled: {
		Label:      "Отменено",
		StepLabel:  "Заявка отменена",
		Hint:       "Вы можете создать новую заявку в любой момент",
		Color:      "#7b8496",
		Background: "#f0f3f7",
	},
}

// slaBreachedVisual overrides any status visual when the server flagged
// an SLA breach. The step index is deliberately not affected.
var slaBreachedVisual = Visual{
	Label:      "Нарушен SLA",
	StepLabel:  "Требует внимания",
	Hint:       "Мы уже уведомили администратора",
	Color:      "#c63f38",
	Background: "#fdeceb",
}

// ResolveVisual returns the visual for s. When slaBreached is set the
// breach visual wins regardless of status. Unknown statuses resolve to a
// neutral grey visual labelled with the raw status string, so the
// function is total.
func ResolveVisual(s Status, slaBreached bool) Visual {
	if slaBreached {
		return slaBreachedVisual
	}
	if v, ok := visuals[s]; ok {
		return v
	}
	label := string(s)
	if label == "" {
		label = "Неизвестно"
	}
	return Visual{
		Label:      label,
		StepLabel:  label,
		Color:      "#7b8496",
		Background: "#f0f3f7",
	}
}

// Color returns the display color for s honoring the breach override.
func Color(s Status, slaBreached bool) string {
	return ResolveVisual(s, slaBreached).Color
}

// Label returns the human label for s, falling back to the raw value.
func Label(s Status) string {
	if v, ok := visuals[s]; ok {
		return v.Label
	}
	if s == "" {
		return "-"
	}
	return string(s)
}
