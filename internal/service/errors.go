package service

import "errors"

// Таксономия ошибок ядра. Обработчики сопоставляют их с HTTP-ответами,
// вызывающая сторона различает по errors.Is.
var (
	// Некорректный вход: диапазон дат, формат времени и т.п.
	ErrValidation = errors.New("validation failed")
	// У вызывающего нет прав на корт; существование корта не раскрывается.
	ErrUnauthorized = errors.New("permission denied")
	// Сущность не найдена.
	ErrNotFound = errors.New("not found")
	// Дата в blackout, вне часов работы или корт на обслуживании.
	ErrUnavailable = errors.New("slot unavailable")
	// Проигрыш гонки за слот: вызывающему стоит перечитать доступность,
	// а не повторять тот же запрос.
	ErrConflict = errors.New("slot conflict")
	// Попытка работы с уже прошедшим временем.
	ErrPastTime = errors.New("time already elapsed")
)
