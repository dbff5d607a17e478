// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - consumer.go  — блокирующий цикл потребления с переподключением
//   - ackgate.go   — маршалинг ack/nack обратно в горутину соединения
//   - publisher.go — публикация событий между стадиями конвейера
//
// Модель владения: соединение и канал принадлежат ровно одной горутине —
// той, что выполняет Consumer.Run. Воркеры никогда не трогают канал
// напрямую; намерение подтверждения передаётся через Gate и применяется
// владеющей горутиной.
package mq
