// Package cli реализует команды инструмента командной строки conveyor.
//
// CLI работает поверх read-only HTTP API stage-сервисов и не
// импортирует internal/api: типы ответов продублированы в client.go,
// чтобы бинарь CLI не тянул серверные зависимости.
package cli
