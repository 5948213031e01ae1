package service

import (
	"strings"
	"time"

	"shift-calendar/backend/internal/model"
)

// labels 导出与提醒使用的界面文案
type labels struct {
	code            string
	Date            string
	ShiftType       string
	Priority        string
	Status          string
	StartTime       string
	EndTime         string
	Notes           string
	ShiftChangeMemo string
	High            string
	Medium          string
	Low             string
	Completed       string
	Incomplete      string
	NotAvailable    string
	UnknownType     string
	SheetName       string
	ReminderTitle   string
	reminderBody    string // 占位符 {shiftName} {date} {time}
	dateLayout      string
	timeLayout      string
}

var translations = map[string]labels{
	"it": {
		code:            "it",
		Date:            "Data",
		ShiftType:       "Tipo di Turno",
		Priority:        "Priorità",
		Status:          "Stato",
		StartTime:       "Ora Inizio",
		EndTime:         "Ora Fine",
		Notes:           "Note",
		ShiftChangeMemo: "Memo Cambio Turno",
		High:            "Alta",
		Medium:          "Media",
		Low:             "Bassa",
		Completed:       "Completato",
		Incomplete:      "Da Fare",
		NotAvailable:    "N/D",
		UnknownType:     "Unknown",
		SheetName:       "Turni",
		ReminderTitle:   "Promemoria Turno",
		reminderBody:    `È ora per il tuo turno "{shiftName}" del {date} alle {time}.`,
		dateLayout:      "02/01/2006",
		timeLayout:      "15:04",
	},
	"en": {
		code:            "en",
		Date:            "Date",
		ShiftType:       "Shift Type",
		Priority:        "Priority",
		Status:          "Status",
		StartTime:       "Start Time",
		EndTime:         "End Time",
		Notes:           "Notes",
		ShiftChangeMemo: "Shift Change Memo",
		High:            "High",
		Medium:          "Medium",
		Low:             "Low",
		Completed:       "Completed",
		Incomplete:      "Incomplete",
		NotAvailable:    "N/A",
		UnknownType:     "Unknown",
		SheetName:       "Shifts",
		ReminderTitle:   "Shift Reminder",
		reminderBody:    `It's time for your "{shiftName}" shift on {date} at {time}.`,
		dateLayout:      "01/02/2006",
		timeLayout:      "03:04 PM",
	},
}

// labelsFor 未知语言回退到意大利语
func labelsFor(lang string) labels {
	if l, ok := translations[lang]; ok {
		return l
	}
	return translations["it"]
}

// priority 未设置优先级按 low 显示
func (l labels) priority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return l.High
	case model.PriorityMedium:
		return l.Medium
	default:
		return l.Low
	}
}

func (l labels) status(completed bool) string {
	if completed {
		return l.Completed
	}
	return l.Incomplete
}

func (l labels) headers() []string {
	return []string{l.Date, l.ShiftType, l.Priority, l.Status, l.StartTime, l.EndTime, l.Notes, l.ShiftChangeMemo}
}

// reminderText 提醒正文：日期取班次日期，时间取提醒时刻
func (l labels) reminderText(shiftName string, shiftDate, at time.Time) string {
	return strings.NewReplacer(
		"{shiftName}", shiftName,
		"{date}", shiftDate.Format(l.dateLayout),
		"{time}", at.Format(l.timeLayout),
	).Replace(l.reminderBody)
}
