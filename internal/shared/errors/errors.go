// Package errors содержит общие доменные ошибки приложения.
//
// Ошибки делятся на два уровня:
//   - нормализованные ошибки хранилища (ErrConflict, ErrNotFound, ErrStorage) —
//     их возвращает только слой repository, коды PostgreSQL выше него не поднимаются;
//   - исходы запроса (ErrAlreadyExists, ErrNotFound, ErrInvalidInput) —
//     их возвращает слой service, а api маппит их на HTTP-статусы.
//
// ErrProvisioning — фатальная ошибка старта, сервис с ней не поднимается.
package errors

import "errors"

// ошибки хранилища
var (
	// Нарушено ограничение уникальности (например email уже занят)
	ErrConflict = errors.New("conflict")
	// Запись для точечной операции не найдена
	ErrNotFound = errors.New("not found")
	// Всё остальное: обрыв соединения, битый запрос, неожиданное ограничение
	ErrStorage = errors.New("storage failure")
)

// обобщённые причины недоступности хранилища (без текста драйвера),
// идут вместе с ErrStorage из Probe
var (
	// Сервер базы не отвечает по сети
	ErrStoreUnreachable = errors.New("connection refused")
	// Неверные учётные данные или нет прав на подключение
	ErrStoreAuth = errors.New("authentication failed")
	// Базы данных из строки подключения нет
	ErrStoreMissingDatabase = errors.New("database does not exist")
	// Сервер отказывает в новых соединениях (старт, лимит соединений)
	ErrStoreUnavailable = errors.New("server unavailable")
	// Пул ещё не открыт или уже закрыт
	ErrStoreNotConnected = errors.New("not connected")
)

// исходы запроса
var (
	// Ресурс уже существует
	ErrAlreadyExists = errors.New("already exists")
	// Входные данные невалидны (пустой патч, плохая пагинация, неверный формат полей)
	ErrInvalidInput = errors.New("invalid input")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Тело запроса больше допустимого
	ErrPayloadTooLarge = errors.New("payload too large")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
)

// Не удалось подготовить базу данных при старте
var ErrProvisioning = errors.New("provisioning failure")

// для тестов
var (
	// ожидаемая ошибка
	ErrExpectedError = errors.New("expected error")
	// неожидаемая ошибка
	ErrUnexpectedError = errors.New("unexpected error")
)
