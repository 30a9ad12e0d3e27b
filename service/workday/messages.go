package workday

import (
	"fmt"

	"hikvision-integration/models"
)

const defaultSupport = "администратору"

// notificationText is the message sent to the employee after a transition
// attempt. Failures ask the employee to act manually.
func notificationText(company *models.Company, name string, res models.TransitionResult) string {
	support := company.SupportContact
	if support == "" {
		support = defaultSupport
	}
	greeting := ""
	if name != "" {
		greeting = name + ", "
	}

	switch {
	case res.Kind == models.TransitionOpen && res.Success:
		return fmt.Sprintf("Доброе утро, %s! Рабочий день начат. Хорошего дня!", nameOr(name, "коллега"))
	case res.Kind == models.TransitionOpen && res.Transport:
		return fmt.Sprintf("%sсервер учёта времени недоступен, рабочий день не начат. Начните его вручную и сообщите %s.", greeting, support)
	case res.Kind == models.TransitionOpen:
		return fmt.Sprintf("%sне удалось начать рабочий день автоматически. Пожалуйста, начните его вручную.", greeting)
	case res.Success:
		return "Рабочий день завершён. Хорошего вечера!"
	case res.Transport:
		return fmt.Sprintf("%sсервер учёта времени недоступен, рабочий день не завершён. Завершите его вручную и сообщите %s.", greeting, support)
	}
	return fmt.Sprintf("%sне удалось завершить рабочий день автоматически. Пожалуйста, завершите его вручную.", greeting)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
