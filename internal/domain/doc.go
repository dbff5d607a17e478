// Package domain содержит основные типы данных Conveyor.
//
// Ключевые типы:
//   - Task       — единица отслеживаемой работы (одно сообщение из очереди)
//   - TaskStatus — статусы жизненного цикла задачи
//
// Инварианты Task:
//   - StartedAt устанавливается не более одного раза
//   - CompletedAt устанавливается ровно один раз, при переходе в финальный статус
//   - из финального статуса задача не выходит
package domain
