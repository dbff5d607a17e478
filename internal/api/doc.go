// Package api реализует read-only HTTP API статуса задач.
//
// API — проекция реестра задач: все ответы собираются из снимков
// реестра, мутации задач через API невозможны. Ошибки отдаются в
// едином конверте {"error": {"code", "message"}}.
package api
